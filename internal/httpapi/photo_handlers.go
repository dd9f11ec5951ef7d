package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"ai-trip-planner/internal/photo"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBytes = 32 << 20
	uploadField    = "files"
)

func (s *Server) listPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	photos, err := s.svc.Photos.List(r.Context(), sessionOf(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if photos == nil {
		photos = []photo.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (s *Server) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart upload: %v", err))
		return
	}

	var uploads []photo.Upload
	for _, fh := range r.MultipartForm.File[uploadField] {
		f, err := fh.Open()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		uploads = append(uploads, photo.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if len(uploads) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("no files in form field %q", uploadField))
		return
	}

	saved, err := s.svc.Photos.Upload(r.Context(), sessionOf(r), id, uploads)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if saved == nil {
		saved = []photo.Photo{}
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) getPhoto(w http.ResponseWriter, r *http.Request) {
	data, p, err := s.svc.Photos.Data(r.Context(), sessionOf(r), chi.URLParam(r, "photoID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", p.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", p.OriginalName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) deletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Photos.Delete(r.Context(), sessionOf(r), chi.URLParam(r, "photoID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
