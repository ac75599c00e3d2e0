package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"budgetiq/internal/log"
	"budgetiq/internal/report"
)

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	data, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, data); err != nil {
		log.FromContext(r.Context()).Error("pdf generation failed", log.FieldError, err, log.FieldPeriod, string(data.Period))
		writeDetail(w, http.StatusInternalServerError, "Report generation failed")
		return
	}

	sendAttachment(w, data.Filename("pdf"), "application/pdf", buf.Bytes())
}

func (s *Server) handleReportExcel(w http.ResponseWriter, r *http.Request) {
	data, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteExcel(&buf, data); err != nil {
		log.FromContext(r.Context()).Error("excel generation failed", log.FieldError, err, log.FieldPeriod, string(data.Period))
		writeDetail(w, http.StatusInternalServerError, "Report generation failed")
		return
	}

	sendAttachment(w, data.Filename("xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleReportSheets appends the report rows to the configured Google Sheets
// spreadsheet instead of streaming a file.
func (s *Server) handleReportSheets(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Google Sheets export is not configured")
		return
	}

	data, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	if err := s.sheets.Export(r.Context(), data); err != nil {
		log.FromContext(r.Context()).Error("sheets export failed", log.FieldError, err, log.FieldPeriod, string(data.Period))
		writeDetail(w, http.StatusBadGateway, "Google Sheets export failed")
		return
	}

	log.FromContext(r.Context()).Info("report exported to sheets", log.FieldPeriod, string(data.Period))
	writeMessage(w, "Report exported to Google Sheets")
}

func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) (*report.Data, bool) {
	user := currentUser(r.Context())

	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid period: must be 'weekly' or 'monthly'")
		return nil, false
	}

	data, err := report.Build(r.Context(), s.store, user, period, time.Now().UTC())
	if err != nil {
		log.FromContext(r.Context()).Error("report build failed",
			log.FieldError, err,
			log.FieldUserID, user.ID,
			log.FieldPeriod, string(period),
		)
		writeDetail(w, http.StatusInternalServerError, "Report generation failed")
		return nil, false
	}
	return data, true
}

func sendAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
