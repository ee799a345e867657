package handlers

import (
	"time"

	"github.com/sendico/apiserver/internal/services"
	"github.com/sendico/apiserver/types"
)

type registeredUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type userResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginResponse struct {
	userResponse
	Token string `json:"token"`
}

type postingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Pictures    []string  `json:"pictures"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type blogResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Picture     string    `json:"picture"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(user types.User) userResponse {
	return userResponse{Username: user.Username, Name: user.Name, IsAdmin: user.IsAdmin}
}

func toPostingResponse(p types.Posting) postingResponse {
	pictures := p.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	return postingResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date.Format(services.DateLayout),
		Pictures:    pictures,
		Owner:       p.Owner,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toBlogResponse(b types.Blog) blogResponse {
	return blogResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Date:        b.Date.Format(services.DateLayout),
		Picture:     b.Picture,
		Owner:       b.Owner,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
