package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"myblog/internal/metrics"
	"myblog/internal/models"
	"myblog/internal/service"
	"myblog/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	msgPostsRequired  = "Title and content are required!"
	msgPostCreated    = "Post created successfully!"
	msgPostUpdated    = "Post updated successfully!"
	msgPostDeleted    = "Post deleted successfully!"
	msgPostNotFound   = "Post not found!"
	msgInvalidImage   = "Invalid image file format!"
	msgImageTooLarge  = "Image file is too large!"
	imageFormField    = "image"
	uploadResultOK    = "stored"
	uploadResultBad   = "rejected"
	uploadResultError = "error"
)

// postForm is the body of POST /create and POST /edit/:id.
type postForm struct {
	Title   string `form:"title" binding:"required"`
	Content string `form:"content" binding:"required"`
}

func (f postForm) input() service.PostInput {
	return service.PostInput{Title: f.Title, Content: f.Content}
}

// @Summary      List posts
// @Tags         posts
// @Produce      html
// @Success      200
// @Failure      500
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	posts, err := h.services.Posts.List(c.Request.Context())
	if err != nil {
		h.serverError(c, "post_list_failed", err)
		return
	}
	h.render(c, "index.html", gin.H{"Posts": posts})
}

// @Summary      New post form
// @Tags         posts
// @Produce      html
// @Success      200
// @Failure      302  "redirect to /login without a session"
// @Router       /create [get]
func (h *Handler) createForm(c *gin.Context) {
	h.render(c, "create.html", gin.H{"Title": "New post"})
}

// @Summary      Create post
// @Tags         posts
// @Accept       x-www-form-urlencoded
// @Param        title    formData  string  true  "Post title"
// @Param        content  formData  string  true  "Post body"
// @Success      302  "redirect to / on success, /create on invalid input"
// @Failure      500
// @Router       /create [post]
func (h *Handler) createPost(c *gin.Context) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, models.FlashError, msgPostsRequired, "/create")
		return
	}

	p, err := h.services.Posts.Create(c.Request.Context(), form.input())
	if err != nil {
		h.postError(c, err, "/create", "post_create_failed")
		return
	}
	metrics.PostMutationsTotal.WithLabelValues(models.PostCreated).Inc()
	if h.log != nil {
		h.log.Infow("post_created", "post_id", p.ID, "user_id", currentUser(c))
	}
	h.redirectWithFlash(c, models.FlashSuccess, msgPostCreated, "/")
}

// @Summary      Edit post form
// @Tags         posts
// @Produce      html
// @Param        id   path  string  true  "Post ID"
// @Success      200
// @Failure      302  "redirect to / when the post does not exist"
// @Router       /edit/{id} [get]
func (h *Handler) editForm(c *gin.Context) {
	p, err := h.services.Posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.postError(c, err, "/", "post_get_failed")
		return
	}
	h.render(c, "edit.html", gin.H{"Title": "Edit post", "Post": p})
}

// @Summary      Update post
// @Description  Replaces title and content. The stored image is replaced only when a new one is uploaded.
// @Tags         posts
// @Accept       multipart/form-data
// @Param        id       path      string  true   "Post ID"
// @Param        title    formData  string  true   "Post title"
// @Param        content  formData  string  true   "Post body"
// @Param        image    formData  file    false  "png, jpg, jpeg or gif"
// @Success      302  "redirect to / on success, /edit/{id} on invalid input"
// @Failure      500
// @Router       /edit/{id} [post]
func (h *Handler) editPost(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	formPath := "/edit/" + id

	if _, err := h.services.Posts.Get(ctx, id); err != nil {
		h.postError(c, err, "/", "post_get_failed", "post_id", id)
		return
	}

	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, models.FlashError, msgPostsRequired, formPath)
		return
	}
	in := form.input()
	if err := in.Validate(); err != nil {
		h.postError(c, err, formPath, "post_update_failed")
		return
	}

	var imageURL *string
	if fh, err := c.FormFile(imageFormField); err == nil {
		ref, ok := h.storeImage(c, id, fh, formPath)
		if !ok {
			return
		}
		imageURL = &ref
	}

	if err := h.services.Posts.Update(ctx, id, in, imageURL); err != nil {
		h.postError(c, err, formPath, "post_update_failed", "post_id", id)
		return
	}
	metrics.PostMutationsTotal.WithLabelValues(models.PostUpdated).Inc()
	if h.log != nil {
		h.log.Infow("post_updated", "post_id", id, "user_id", currentUser(c), "image", imageURL != nil)
	}
	h.redirectWithFlash(c, models.FlashSuccess, msgPostUpdated, "/")
}

// storeImage saves an uploaded image for postID. On failure it has already
// responded and returns false.
func (h *Handler) storeImage(c *gin.Context, postID string, fh *multipart.FileHeader, formPath string) (string, bool) {
	f, err := fh.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(uploadResultError).Inc()
		h.serverError(c, "upload_open_failed", err, "post_id", postID)
		return "", false
	}
	defer func() { _ = f.Close() }()

	ref, err := h.services.Uploads.Store(c.Request.Context(), postID, fh.Filename, f)
	switch {
	case err == nil:
		metrics.UploadsTotal.WithLabelValues(uploadResultOK).Inc()
		return ref, true
	case errors.Is(err, storage.ErrUnsupportedImage), errors.Is(err, storage.ErrInvalidFilename):
		metrics.UploadsTotal.WithLabelValues(uploadResultBad).Inc()
		h.redirectWithFlash(c, models.FlashError, msgInvalidImage, formPath)
	case errors.Is(err, storage.ErrFileTooLarge):
		metrics.UploadsTotal.WithLabelValues(uploadResultBad).Inc()
		h.redirectWithFlash(c, models.FlashError, msgImageTooLarge, formPath)
	default:
		metrics.UploadsTotal.WithLabelValues(uploadResultError).Inc()
		h.serverError(c, "upload_store_failed", err, "post_id", postID, "filename", fh.Filename)
	}
	return "", false
}

// @Summary      Delete post
// @Tags         posts
// @Param        id   path  string  true  "Post ID"
// @Success      302  "redirect to /"
// @Failure      500
// @Router       /delete/{id} [get]
func (h *Handler) deletePost(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Posts.Delete(c.Request.Context(), id); err != nil {
		h.postError(c, err, "/", "post_delete_failed", "post_id", id)
		return
	}
	metrics.PostMutationsTotal.WithLabelValues(models.PostDeleted).Inc()
	if h.log != nil {
		h.log.Infow("post_deleted", "post_id", id, "user_id", currentUser(c))
	}
	h.redirectWithFlash(c, models.FlashSuccess, msgPostDeleted, "/")
}

// @Summary      Serve uploaded image
// @Tags         posts
// @Produce      octet-stream
// @Param        filename  path  string  true  "Stored file name"
// @Success      200
// @Failure      404
// @Router       /uploads/{filename} [get]
func (h *Handler) uploadedFile(c *gin.Context) {
	path, err := h.services.Uploads.Open(c.Param("filename"))
	if err != nil {
		if !errors.Is(err, storage.ErrFileNotFound) && !errors.Is(err, storage.ErrInvalidFilename) && h.log != nil {
			h.log.Errorw("upload_open_failed", "err", err, "filename", c.Param("filename"))
		}
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	c.File(path)
}

// postError maps service errors: validation problems go back to formPath,
// unknown posts go to the index, anything else is a 500.
func (h *Handler) postError(c *gin.Context, err error, formPath, logKey string, kv ...interface{}) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		h.redirectWithFlash(c, models.FlashError, ve.Message, formPath)
	case errors.Is(err, service.ErrPostNotFound):
		h.redirectWithFlash(c, models.FlashError, msgPostNotFound, "/")
	default:
		h.serverError(c, logKey, err, kv...)
	}
}
