package httpapi

import (
	"net/http"

	"bugTracker/internal/auth"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.users.Register(r.Context(), raw)
	writeCreated(a, w, r, u, err)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.users.Login(r.Context(), raw)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// caller returns the id of the authenticated user; requireUser guarantees one.
func caller(r *http.Request) int64 {
	p, _ := auth.FromContext(r.Context())
	return p.UserID
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	v, err := a.users.List(r.Context())
	writeList(a, w, r, v, err)
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := a.users.Get(r.Context(), caller(r))
	writeOne(a, w, r, u, err, "user")
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.users.UpdateProfile(r.Context(), caller(r), raw)
	writeOne(a, w, r, u, err, "user")
}

func (a *API) deleteProfile(w http.ResponseWriter, r *http.Request) {
	ok, err := a.users.Delete(r.Context(), caller(r))
	writeDeleted(a, w, r, ok, err, "user")
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok, err := a.users.ChangePassword(r.Context(), caller(r), raw)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
