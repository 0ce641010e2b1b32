package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/gridwatt/chargeauth"
	"github.com/gridwatt/chargeauth/store"
)

var mgr *chargeauth.Manager

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Option 1: Zero-config (SQLite + in-process cache)
	db, err := store.NewSQLite("chargeauth.db", store.Options{Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}

	mgr, err = chargeauth.New(chargeauth.Config{
		Store:  db,
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize manager")
	}
	defer mgr.Close()

	// Option 2: Production config (MySQL + shared Redis cache)
	// Uncomment to use:
	/*
		db, err := store.NewMySQLFromDSN("user:password@tcp(localhost:3306)/chargeauth", store.Options{Logger: logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to MySQL")
		}

		cache, err := store.NewRedisFromConfig(store.RedisConfig{Addr: "localhost:6379"})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}

		mgr, err = chargeauth.New(chargeauth.Config{
			Store:  db,
			Cache:  cache,
			Logger: &logger,
		})
	*/

	http.HandleFunc("/register", registerHandler)
	http.HandleFunc("/login", loginHandler)
	http.HandleFunc("/logout", logoutHandler)
	http.HandleFunc("/whoami", whoamiHandler)

	fmt.Println("chargeauth example server running on :8080")
	fmt.Println("Endpoints:")
	fmt.Println("  POST /register?login=xxx&password=yyy  - Create an account and log in")
	fmt.Println("  POST /login?login=xxx&password=yyy     - Log in")
	fmt.Println("  POST /logout                           - Log out")
	fmt.Println("  GET  /whoami                           - Resolve the current session")

	logger.Fatal().Err(http.ListenAndServe(":8080", nil)).Msg("server stopped")
}

func registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	login := r.URL.Query().Get("login")
	password := r.URL.Query().Get("password")

	customer := &chargeauth.Customer{Login: &login}
	id, token, expiresAt, err := mgr.RegisterCustomer(r.Context(), customer, password, chargeauth.ExtractDeviceInfo(r))
	if err != nil {
		writeError(w, err)
		return
	}

	chargeauth.WriteSessionCookie(w, token, expiresAt)
	writeJSON(w, map[string]any{"customer_id": id, "token": token})
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	login := r.URL.Query().Get("login")
	password := r.URL.Query().Get("password")

	token, expiresAt, err := mgr.LoginPassword(r.Context(), login, password, chargeauth.ExtractDeviceInfo(r))
	if err != nil {
		writeError(w, err)
		return
	}

	chargeauth.WriteSessionCookie(w, token, expiresAt)
	writeJSON(w, map[string]any{"token": token})
}

func logoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The cookie is cleared even when no token was supplied.
	mgr.Logout(r.Context(), chargeauth.ExtractToken(r))
	chargeauth.ClearSessionCookie(w)
	writeJSON(w, map[string]any{"success": true})
}

func whoamiHandler(w http.ResponseWriter, r *http.Request) {
	session, err := mgr.ResolveSession(r.Context(), chargeauth.ExtractToken(r), false)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"customer_id": session.CustomerID,
		"role":        session.Role.String(),
		"expires_at":  session.ExpiresAt,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var verr *chargeauth.ValidationError
	switch {
	case errors.Is(err, chargeauth.ErrUnauthorized),
		errors.Is(err, chargeauth.ErrSessionExpired),
		errors.Is(err, chargeauth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, chargeauth.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, chargeauth.ErrLoginTaken), errors.As(err, &verr):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
