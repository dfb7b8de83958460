package server

import (
	"net/http"

	"github.com/proofdin/proofdin/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	server      *Server
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(s *Server, userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{server: s, userService: userService, jwtService: jwtService}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !h.server.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.server.handleError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.server.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.server.handleError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.server.handleError(w, r, err)
		return
	}
	h.server.jsonResponse(w, status, types.AuthResponse{User: user, Token: token})
}
