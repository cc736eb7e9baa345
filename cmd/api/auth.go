package main

import (
	"net/http"

	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/validator"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username        string  `json:"username"`
		Email           string  `json:"email"`
		Password        string  `json:"password"`
		PasswordConfirm string  `json:"password_confirm"`
		FirstName       string  `json:"first_name"`
		LastName        string  `json:"last_name"`
		Bio             string  `json:"bio"`
		AvatarURL       *string `json:"avatar_url"`
	}

	if !app.decodeBody(w, r, &input) {
		return
	}

	card, err := app.core.RegisterUser(r.Context(), core.RegisterInput{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		PasswordConfirm: input.PasswordConfirm,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Bio:             input.Bio,
		AvatarURL:       input.AvatarURL,
	})
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.writeUserWithToken(w, r, http.StatusCreated, card, "User registered successfully")
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if !app.decodeBody(w, r, &input) {
		return
	}

	v := validator.New()
	v.CheckNotBlank(input.Username, "username", "must be provided")
	v.CheckNotBlank(input.Password, "password", "must be provided")
	if !v.IsValid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user, err := app.core.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	card, err := app.core.GetUser(r.Context(), user.ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.writeUserWithToken(w, r, http.StatusOK, card, "Login successful")
}

func (app *application) writeUserWithToken(w http.ResponseWriter, r *http.Request, status int, card *core.UserCard, message string) {
	token, err := app.auth.GenerateToken(card.User)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.respond(w, r, status, envelope{
		"message": message,
		"user":    detailOf(card, true),
		"token":   token,
	})
}
