package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims embeds teacher identity into the access token.
type JWTClaims struct {
	TeacherID string `json:"teacherId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token   string   `json:"token"`
	Teacher *Teacher `json:"teacher"`
}
