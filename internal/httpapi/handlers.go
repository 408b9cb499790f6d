package httpapi

import (
	"net/http"
)

// writeOne writes v with 200, or 404 when the lookup came back empty.
func writeOne[T any](a *API, w http.ResponseWriter, r *http.Request, v *T, err error, what string) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeList[T any](a *API, w http.ResponseWriter, r *http.Request, v []T, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if v == nil {
		v = []T{}
	}
	writeJSON(w, http.StatusOK, v)
}

func writeCreated[T any](a *API, w http.ResponseWriter, r *http.Request, v *T, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func writeDeleted(a *API, w http.ResponseWriter, r *http.Request, ok bool, err error, what string) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Comments

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	v, err := a.comments.List(r.Context())
	writeList(a, w, r, v, err)
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.comments.Create(r.Context(), raw)
	writeCreated(a, w, r, c, err)
}

func (a *API) getComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.comments.Get(r.Context(), id)
	writeOne(a, w, r, c, err, "comment")
}

func (a *API) listCommentsByBug(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bugId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.comments.ListByBug(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) listCommentsOnBug(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.comments.ListByBug(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) listCommentsByUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.comments.ListByUser(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.comments.Update(r.Context(), id, raw)
	writeOne(a, w, r, c, err, "comment")
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok, err := a.comments.Delete(r.Context(), id)
	writeDeleted(a, w, r, ok, err, "comment")
}

func (a *API) deleteCommentsByBug(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bugId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.comments.DeleteByBug(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Bugs

func (a *API) listBugs(w http.ResponseWriter, r *http.Request) {
	v, err := a.bugs.List(r.Context())
	writeList(a, w, r, v, err)
}

func (a *API) createBug(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.bugs.Create(r.Context(), raw)
	writeCreated(a, w, r, b, err)
}

func (a *API) getBug(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.bugs.Get(r.Context(), id)
	writeOne(a, w, r, b, err, "bug")
}

func (a *API) listBugsByProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.bugs.ListByProject(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) listBugsByAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.bugs.ListByAssignee(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) listBugsByReporter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.bugs.ListByReporter(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) updateBug(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.bugs.Update(r.Context(), id, raw)
	writeOne(a, w, r, b, err, "bug")
}

func (a *API) deleteBug(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok, err := a.bugs.Delete(r.Context(), id)
	writeDeleted(a, w, r, ok, err, "bug")
}

// Projects

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	v, err := a.projects.List(r.Context())
	writeList(a, w, r, v, err)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.projects.Create(r.Context(), raw)
	writeCreated(a, w, r, p, err)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.projects.Get(r.Context(), id)
	writeOne(a, w, r, p, err, "project")
}

func (a *API) listProjectsByCreator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	v, err := a.projects.ListByCreator(r.Context(), id)
	writeList(a, w, r, v, err)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	raw, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.projects.Update(r.Context(), id, raw)
	writeOne(a, w, r, p, err, "project")
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok, err := a.projects.Delete(r.Context(), id)
	writeDeleted(a, w, r, ok, err, "project")
}
