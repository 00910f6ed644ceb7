package sqlstore

import (
	domain "placeholder-mirror/internal/domain/user"
)

// UserSchema represents the database schema for the users table.
// Nested address, geo and company objects are flattened into prefixed columns.
type UserSchema struct {
	ID       int64         `gorm:"primaryKey;autoIncrement:false"`
	Name     string        `gorm:"not null"`
	Username string        `gorm:"not null"`
	Email    string        `gorm:"not null"`
	Address  AddressSchema `gorm:"embedded;embeddedPrefix:address_"`
	Phone    string
	Website  string
	Company  CompanySchema `gorm:"embedded;embeddedPrefix:company_"`
}

// AddressSchema is the embedded address of a user row.
type AddressSchema struct {
	Street  string
	Suite   string
	City    string
	Zipcode string
	Lat     string `gorm:"column:geo_lat"`
	Lng     string `gorm:"column:geo_lng"`
}

// CompanySchema is the embedded company of a user row.
type CompanySchema struct {
	Name        string
	CatchPhrase string
	BS          string `gorm:"column:bs"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// PostSchema represents the database schema for the posts table.
type PostSchema struct {
	ID     int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"not null;index"`
	Title  string
	Body   string
}

// TableName specifies the table name for the PostSchema model.
func (PostSchema) TableName() string {
	return "posts"
}

// CommentSchema represents the database schema for the comments table.
type CommentSchema struct {
	ID     int64 `gorm:"primaryKey;autoIncrement:false"`
	PostID int64 `gorm:"not null;index"`
	Name   string
	Email  string
	Body   string
}

// TableName specifies the table name for the CommentSchema model.
func (CommentSchema) TableName() string {
	return "comments"
}

func toUserSchema(u domain.User) UserSchema {
	return UserSchema{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Address: AddressSchema{
			Street:  u.Address.Street,
			Suite:   u.Address.Suite,
			City:    u.Address.City,
			Zipcode: u.Address.Zipcode,
			Lat:     u.Address.Geo.Lat,
			Lng:     u.Address.Geo.Lng,
		},
		Phone:   u.Phone,
		Website: u.Website,
		Company: CompanySchema{
			Name:        u.Company.Name,
			CatchPhrase: u.Company.CatchPhrase,
			BS:          u.Company.BS,
		},
	}
}

func (m UserSchema) toDomain() *domain.User {
	return &domain.User{
		ID:       m.ID,
		Name:     m.Name,
		Username: m.Username,
		Email:    m.Email,
		Address: domain.Address{
			Street:  m.Address.Street,
			Suite:   m.Address.Suite,
			City:    m.Address.City,
			Zipcode: m.Address.Zipcode,
			Geo:     domain.Geo{Lat: m.Address.Lat, Lng: m.Address.Lng},
		},
		Phone:   m.Phone,
		Website: m.Website,
		Company: domain.Company{
			Name:        m.Company.Name,
			CatchPhrase: m.Company.CatchPhrase,
			BS:          m.Company.BS,
		},
	}
}

func toPostSchema(p domain.Post) PostSchema {
	return PostSchema{ID: p.ID, UserID: p.UserID, Title: p.Title, Body: p.Body}
}

func (m PostSchema) toDomain() domain.Post {
	return domain.Post{ID: m.ID, UserID: m.UserID, Title: m.Title, Body: m.Body}
}

func toCommentSchema(c domain.Comment) CommentSchema {
	return CommentSchema{ID: c.ID, PostID: c.PostID, Name: c.Name, Email: c.Email, Body: c.Body}
}

func (m CommentSchema) toDomain() domain.Comment {
	return domain.Comment{ID: m.ID, PostID: m.PostID, Name: m.Name, Email: m.Email, Body: m.Body}
}
