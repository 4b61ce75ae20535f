package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags so the password hash never leaves the process.
//
// The set of places a user owns is not embedded here.  It lives in the
// `user_places` table and is kept in sync with places.creator_id by the
// transactional create and delete paths; both sides reference each other
// by opaque numeric identity only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown alongside the user's places.
//  Email        – unique email address used for login.
//  PasswordHash – bcrypt hashed password.
//  Image        – path of the user's avatar image on disk.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Image        string    // users.image
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
