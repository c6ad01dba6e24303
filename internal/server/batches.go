package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/export"
	"github.com/joseph-ayodele/workorders-tracker/internal/ingest"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

const uploadField = "files"

var errNoBatch = common.NewAppError("NOT_FOUND", "no batch has been extracted in this session", common.ErrNotFound)

type recordsRequest struct {
	Records []entity.WorkOrder `json:"records"`
}

// createBatch extracts the uploaded files and replaces the session's batch.
func (s *Server) createBatch(c *gin.Context) {
	ctx := c.Request.Context()
	sid := common.SessionIDFromContext(ctx)

	form, err := c.MultipartForm()
	if err != nil {
		s.writeError(c, common.InvalidInputf("expected a multipart upload: %v", err))
		return
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		s.writeError(c, common.InvalidInputf("no files uploaded in field %q", uploadField))
		return
	}

	docs, readFailures := ingest.FromUploads(files)
	batch := s.runner.Run(ctx, docs, func(done, total int, name string) {
		s.logger.Info("pipeline.progress", "session_id", sid, "done", done, "total", total, "name", name)
	})
	if len(readFailures) > 0 {
		batch.Failures = append(readFailures, batch.Failures...)
	}

	if err := s.sessions.Replace(ctx, sid, batch); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) getBatch(c *gin.Context) {
	batch, err := s.currentBatch(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// updateRecords replaces the reviewed records of the current batch.
func (s *Server) updateRecords(c *gin.Context) {
	var req recordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.InvalidInputf("invalid records body: %v", err))
		return
	}
	ctx := c.Request.Context()
	batch, err := s.sessions.UpdateRecords(ctx, common.SessionIDFromContext(ctx), req.Records)
	if errors.Is(err, common.ErrNotFound) {
		err = errNoBatch
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) deleteBatch(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.sessions.Delete(ctx, common.SessionIDFromContext(ctx)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportBatch(c *gin.Context) {
	batch, err := s.currentBatch(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	data, err := s.exporter.WriteRecords(batch.Records)
	if err != nil {
		s.writeError(c, err)
		return
	}
	attachment(c, export.BatchFileName, data)
}

// saveBatch inserts every record of the current batch into the store.
func (s *Server) saveBatch(c *gin.Context) {
	batch, err := s.currentBatch(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(batch.Records) == 0 {
		s.writeError(c, common.InvalidInputf("the current batch has no records to save"))
		return
	}
	n, err := s.gateway.Insert(c.Request.Context(), batch.Records)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": n})
}

func (s *Server) currentBatch(c *gin.Context) (pipeline.Batch, error) {
	ctx := c.Request.Context()
	batch, err := s.sessions.Get(ctx, common.SessionIDFromContext(ctx))
	if errors.Is(err, common.ErrNotFound) {
		return pipeline.Batch{}, errNoBatch
	}
	return batch, err
}

func attachment(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}
