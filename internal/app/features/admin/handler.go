package admin

import (
	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/uploads"
	"go.uber.org/zap"
)

// Status lines shown above the upload form.
const (
	MsgMissingFields = "⚠️ Please fill in all fields!"
	MsgSuccess       = "✅ Upload successful!"
	MsgFailed        = "❌ Upload failed. Try again."
)

// Handler serves the admin upload form.
type Handler struct {
	Uploads *uploads.Pipeline
	Catalog *catalog.Catalog
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(pipeline *uploads.Pipeline, cat *catalog.Catalog, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Uploads: pipeline,
		Catalog: cat,
		ErrLog:  errLog,
		Log:     logger,
	}
}
