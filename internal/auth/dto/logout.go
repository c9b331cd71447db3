package dto

type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
}

type SetActiveInput struct {
	Active bool `json:"active"`
}
