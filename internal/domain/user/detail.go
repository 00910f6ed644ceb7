package user

// UserDetail is a user joined with its posts and their comments at read time.
// It only exists for responses and is never written to storage.
type UserDetail struct {
	User
	Posts []PostDetail `json:"posts"`
}

// PostDetail is a post joined with its comments.
type PostDetail struct {
	Post
	Comments []Comment `json:"comments"`
}

// NewPostDetail attaches comments to a post. A nil slice becomes empty so the
// response always carries an array.
func NewPostDetail(p Post, comments []Comment) PostDetail {
	if comments == nil {
		comments = []Comment{}
	}
	return PostDetail{Post: p, Comments: comments}
}

// NewUserDetail attaches posts to a user with the same nil handling.
func NewUserDetail(u User, posts []PostDetail) *UserDetail {
	if posts == nil {
		posts = []PostDetail{}
	}
	return &UserDetail{User: u, Posts: posts}
}
