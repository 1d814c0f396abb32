package web

import (
	"net/http"

	"github.com/JonMunkholm/assetrepo/internal/table"
)

// updateRequest is the body of PUT /api/update.
type updateRequest struct {
	Query       string    `json:"query"`
	UpdatedData table.Row `json:"updatedData"`
}

// deleteRequest is the body of DELETE /api/delete.
type deleteRequest struct {
	Query string `json:"query"`
}

// handleUpdate merges updatedData into the first asset matching query.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.assets.Update(ctx, req.Query, req.UpdatedData); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Asset updated successfully"})
}

// handleAdd appends the posted asset unless it collides on an identity field.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var row table.Row
	if err := decodeJSON(w, r, &row); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.assets.Add(ctx, row); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Asset added successfully"})
}

// handleDelete removes every asset matching query.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	n, err := s.assets.Delete(ctx, req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Asset deleted successfully", Deleted: &n})
}
