package user

// User represents a user mirrored from the upstream placeholder API.
type User struct {
	ID       int64   `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	Username string  `json:"username" bson:"username"`
	Email    string  `json:"email" bson:"email"`
	Address  Address `json:"address" bson:"address"`
	Phone    string  `json:"phone" bson:"phone"`
	Website  string  `json:"website" bson:"website"`
	Company  Company `json:"company" bson:"company"`
}

// Address is the postal address nested in a user.
type Address struct {
	Street  string `json:"street" bson:"street"`
	Suite   string `json:"suite" bson:"suite"`
	City    string `json:"city" bson:"city"`
	Zipcode string `json:"zipcode" bson:"zipcode"`
	Geo     Geo    `json:"geo" bson:"geo"`
}

// Geo holds coordinates as the upstream API encodes them.
type Geo struct {
	Lat string `json:"lat" bson:"lat"`
	Lng string `json:"lng" bson:"lng"`
}

// Company is the employer nested in a user.
type Company struct {
	Name        string `json:"name" bson:"name"`
	CatchPhrase string `json:"catchPhrase" bson:"catchPhrase"`
	BS          string `json:"bs" bson:"bs"`
}

// Post is a post owned by a user through UserID.
type Post struct {
	ID     int64  `json:"id" bson:"id"`
	UserID int64  `json:"userId" bson:"userId"`
	Title  string `json:"title" bson:"title"`
	Body   string `json:"body" bson:"body"`
}

// Comment is a comment attached to a post through PostID.
type Comment struct {
	ID     int64  `json:"id" bson:"id"`
	PostID int64  `json:"postId" bson:"postId"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Body   string `json:"body" bson:"body"`
}
