package model

import "time"

// Place represents a user-created place record as stored in the `places`
// table.  A place belongs to exactly one creator and the creator's
// `user_places` rows must mirror this relationship; the pair of writes is
// only ever performed inside a single transaction.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – short display title.
//  Description – free-form description text.
//  Address     – postal address of the place.
//  Lat, Lng    – geocoordinates of the place.
//  Image       – path of the place image on disk.
//  CreatorID   – user ID of the owner; immutable after creation.
//  CreatedAt   – timestamp when the place was created.
//  UpdatedAt   – timestamp of last update.
type Place struct {
    ID          uint64    // places.id
    Title       string    // places.title
    Description string    // places.description
    Address     string    // places.address
    Lat         float64   // places.lat
    Lng         float64   // places.lng
    Image       string    // places.image
    CreatorID   uint64    // places.creator_id
    CreatedAt   time.Time // places.created_at
    UpdatedAt   time.Time // places.updated_at
}
