package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/raffle/pkg/codec"
	"github.com/ssargent/raffle/pkg/records"
	"go.uber.org/zap"
)

var errMissingField = errors.New("missing form field")

// form field names, in record field order
var signupFields = []string{
	"firstname",
	"lastname",
	"company",
	"title",
	"department",
	"email",
	"city",
	"country",
	"phonenumber",
}

// Server holds the API server state
type Server struct {
	records RecordService
	config  ServerConfig
	metrics *Metrics
	sugar   *zap.SugaredLogger
}

// NewServer creates a new API server
func NewServer(svc RecordService, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		records: svc,
		config:  config.withDefaults(),
		metrics: metrics,
		sugar:   logger.Named("api").Sugar(),
	}
}

// errorStatus maps a service error to an HTTP status and a user-facing message
func (s *Server) errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, records.ErrEmptyStore):
		return http.StatusNotFound, "no records to draw from"
	case errors.Is(err, records.ErrCorruptRecord):
		return http.StatusUnprocessableEntity, "record is corrupt"
	case errors.Is(err, records.ErrCellTooLong):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, records.ErrInvalidID), errors.Is(err, errMissingField):
		return http.StatusBadRequest, err.Error()
	}
	s.sugar.Errorw("request failed", "error", err)
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) pageError(w http.ResponseWriter, err error) {
	status, message := s.errorStatus(err)
	s.renderError(w, status, message)
}

func (s *Server) jsonError(w http.ResponseWriter, err error) {
	status, message := s.errorStatus(err)
	sendError(w, message, status)
}

// parseRecordForm reads every signup field from the posted form. A field that
// is absent is an error; an empty value is not.
func parseRecordForm(r *http.Request, withComment bool) (codec.Record, error) {
	if err := r.ParseForm(); err != nil {
		return codec.Record{}, fmt.Errorf("%w: %v", errMissingField, err)
	}

	names := signupFields
	if withComment {
		names = append(append([]string(nil), signupFields...), "comment")
	}

	values := make([]string, codec.FieldCount)
	for i, name := range names {
		v, ok := r.PostForm[name]
		if !ok || len(v) == 0 {
			return codec.Record{}, fmt.Errorf("%w: %s", errMissingField, name)
		}
		values[i] = v[0]
	}

	return codec.FromFields(values)
}

// timed runs op and records its duration and outcome
func (s *Server) timed(operation string, op func() error) error {
	start := time.Now()
	err := op()
	s.metrics.RecordOperation(operation, err == nil, time.Since(start))
	return err
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Report whether the record store answers and how many records it holds
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Failure		503	{object}	APIResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.records.Count()
	if err != nil {
		s.metrics.RecordHealthCheck(false)
		s.sugar.Warnw("health check failed", "error", err)
		sendError(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{"status": "healthy", "records": n})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "index.html", codec.Record{})
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "success.html", nil)
}

// handleSignup godoc
//
//	@Summary		Sign up
//	@Description	Store a new registration under a generated id and redirect to the confirmation page
//	@Tags			records
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			firstname	formData	string	true	"First name"
//	@Param			lastname	formData	string	true	"Last name"
//	@Param			company		formData	string	true	"Company"
//	@Param			title		formData	string	true	"Job title"
//	@Param			department	formData	string	true	"Department"
//	@Param			email		formData	string	true	"Email"
//	@Param			city		formData	string	true	"City"
//	@Param			country		formData	string	true	"Country"
//	@Param			phonenumber	formData	string	true	"Phone number"
//	@Success		303
//	@Failure		400	{string}	string	"error page"
//	@Router			/signup [post]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	record, err := parseRecordForm(r, false)
	if err != nil {
		s.pageError(w, err)
		return
	}

	var id string
	err = s.timed("create", func() error {
		var err error
		id, err = s.records.Create(record)
		return err
	})
	if err != nil {
		s.pageError(w, err)
		return
	}

	s.sugar.Infow("signup", "id", id)
	http.Redirect(w, r, "/success.html", http.StatusSeeOther)
}

func (s *Server) handleShowRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var record codec.Record
	err := s.timed("get", func() error {
		var err error
		record, err = s.records.Get(id)
		return err
	})
	if err != nil {
		s.pageError(w, err)
		return
	}

	s.renderPage(w, http.StatusOK, "record.html", recordForm{ID: id, Record: record})
}

// handleUpdateRecord godoc
//
//	@Summary		Update a registration
//	@Description	Replace the registration stored under id, creating it when absent
//	@Tags			records
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			id		path		string	true	"Record id"
//	@Param			comment	formData	string	true	"Comment, plus every signup field"
//	@Success		303
//	@Failure		400	{string}	string	"error page"
//	@Router			/records/{id} [post]
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := parseRecordForm(r, true)
	if err != nil {
		s.pageError(w, err)
		return
	}

	if err := s.timed("update", func() error { return s.records.Update(id, record) }); err != nil {
		s.pageError(w, err)
		return
	}

	http.Redirect(w, r, "/records", http.StatusSeeOther)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var entries []records.Entry
	err := s.timed("list", func() error {
		var err error
		entries, err = s.records.List()
		return err
	})
	if err != nil {
		s.pageError(w, err)
		return
	}

	count, err := s.records.Count()
	if err != nil {
		s.pageError(w, err)
		return
	}

	page := listPage{Count: count, Records: make([]listRow, 0, len(entries))}
	for _, e := range entries {
		page.Records = append(page.Records, listRow{
			ID:        e.ID,
			FirstName: e.Record.FirstName,
			LastName:  e.Record.LastName,
			Company:   e.Record.Company,
		})
	}
	s.renderPage(w, http.StatusOK, "records.html", page)
}

// handleRaffle draws a winner and renders the winner page
func (s *Server) handleRaffle(w http.ResponseWriter, r *http.Request) {
	var winner records.Entry
	err := s.timed("pick_random", func() error {
		var err error
		winner, err = s.records.PickRandom()
		return err
	})
	if err != nil {
		s.pageError(w, err)
		return
	}

	s.metrics.RecordRaffle()
	s.renderWinner(w, winner.ID, winner.Record)
}

// handleRaffleByID shows the winner page for a chosen record
func (s *Server) handleRaffleByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var record codec.Record
	err := s.timed("get", func() error {
		var err error
		record, err = s.records.Get(id)
		return err
	})
	if err != nil {
		s.pageError(w, err)
		return
	}

	s.renderWinner(w, id, record)
}

func (s *Server) renderWinner(w http.ResponseWriter, id string, record codec.Record) {
	s.renderPage(w, http.StatusOK, "raffle.html", rafflePage{
		ID:    id,
		Name:  record.FullName(),
		Email: record.Email,
	})
}

// handleRegistrations godoc
//
//	@Summary		List registrations
//	@Description	Every stored registration as an array of id and record pairs
//	@Tags			records
//	@Produce		json
//	@Success		200	{array}		records.Entry
//	@Failure		500	{object}	APIResponse
//	@Router			/registrations [get]
func (s *Server) handleRegistrations(w http.ResponseWriter, r *http.Request) {
	var entries []records.Entry
	err := s.timed("list", func() error {
		var err error
		entries, err = s.records.List()
		return err
	})
	if err != nil {
		s.jsonError(w, err)
		return
	}

	if entries == nil {
		entries = []records.Entry{}
	}
	sendJSON(w, entries)
}

// handleExportCSV godoc
//
//	@Summary		Export as CSV
//	@Description	Semicolon separated, every field quoted, phone numbers as ="..." text
//	@Tags			export
//	@Produce		text/csv
//	@Success		200	{string}	string	"CSV body"
//	@Failure		500	{object}	APIResponse
//	@Router			/export.csv [get]
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.timed("export_csv", func() error { return s.records.WriteCSV(&buf) }); err != nil {
		s.jsonError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="raffle.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleExportXLSX godoc
//
//	@Summary		Export as XLSX
//	@Description	One sheet with a header row; every cell is text
//	@Tags			export
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success		200	{file}		file
//	@Failure		422	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/export.xlsx [get]
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.timed("export_xlsx", func() error { return s.records.WriteXLSX(&buf) }); err != nil {
		s.jsonError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="raffle.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleDeleteRecord godoc
//
//	@Summary		Delete a registration
//	@Description	Remove the registration stored under id. Deleting a missing id succeeds.
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{object}	map[string]string
//	@Failure		500	{object}	APIResponse
//	@Router			/records/{id} [delete]
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.timed("delete", func() error { return s.records.Delete(id) }); err != nil {
		s.jsonError(w, err)
		return
	}

	sendJSON(w, struct{}{})
}

// startMetricsUpdater refreshes the record count gauge until done is closed
func (s *Server) startMetricsUpdater(done <-chan struct{}) {
	ticker := time.NewTicker(s.config.MetricsInterval)
	defer ticker.Stop()

	for {
		if n, err := s.records.Count(); err == nil {
			s.metrics.SetRecordCount(n)
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}
