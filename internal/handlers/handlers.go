// Package handlers exposes the JSON API. Handlers decode the request,
// call into the core packages, and encode the contract structs; no
// parsing or aggregation logic lives here.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"faturas/internal/auth"
	"faturas/internal/compare"
	"faturas/internal/export"
	"faturas/internal/extract"
	"faturas/internal/filestore"
	"faturas/internal/ingest"
	"faturas/internal/jobs"
	"faturas/internal/logger"
	"faturas/internal/models"
	"faturas/internal/parser"
	"faturas/internal/profile"
	"faturas/internal/store"
	"faturas/internal/version"
)

const maxUploadBytes = 10 << 20 // per request

type Handler struct {
	db    *store.DB
	auth  *auth.Auth
	files *filestore.Store
	opts  parser.Options
}

func New(db *store.DB, a *auth.Auth, files *filestore.Store, opts parser.Options) *Handler {
	return &Handler{db: db, auth: a, files: files, opts: opts}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"erro": msg})
}

// Login checks the password and issues a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Password string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}

	if !h.auth.CheckPassword(ctx, body.Password) {
		writeError(w, http.StatusUnauthorized, "senha incorreta")
		return
	}

	token, err := h.auth.CreateSession(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao criar sessão")
		return
	}
	h.auth.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout deletes the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.auth.GetSessionFromRequest(r); token != "" {
		h.auth.DeleteSession(r.Context(), token)
	}
	h.auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// APIVersion returns build information.
func (h *Handler) APIVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}

// Issuers lists the configured issuer profiles.
func (h *Handler) Issuers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"bancos": profile.SupportedIssuers()})
}

// docOptions applies per-request overrides to the shared parser options.
func (h *Handler) docOptions(r *http.Request) (parser.Options, error) {
	opts := h.opts
	opts.Issuer = r.FormValue("banco")
	if raw := r.FormValue("ano"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1990 || year > 2999 {
			return opts, fmt.Errorf("ano inválido: %q", raw)
		}
		opts.ReferenceYear = year
	}
	return opts, nil
}

// extractUpload pulls one uploaded statement into a document, extracting
// text according to the file extension.
func extractUpload(r *http.Request, fh *multipart.FileHeader, cardOrigin string) ingest.Document {
	doc := ingest.Document{Name: fh.Filename, CardOrigin: cardOrigin}

	f, err := fh.Open()
	if err != nil {
		doc.Err = fmt.Errorf("abrir %s: %w", fh.Filename, err)
		return doc
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		doc.Text, doc.Err = extract.PDFUpload(r.Context(), fh.Filename, f)
		return doc
	}

	data, err := io.ReadAll(f)
	if err != nil {
		doc.Err = fmt.Errorf("ler %s: %w", fh.Filename, err)
		return doc
	}
	doc.Text = string(data)
	return doc
}

// Analyze imports a single uploaded statement and returns its
// transactions, defect counts, and dedup outcome.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "formulário inválido")
		return
	}

	files := r.MultipartForm.File["arquivo"]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "envie exatamente um arquivo no campo 'arquivo'")
		return
	}

	opts, err := h.docOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := extractUpload(r, files[0], r.FormValue("origem_cartao"))
	importer := ingest.New(h.db, l, opts)
	res := importer.ImportText(ctx, doc)
	if res.Err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type comparisonResponse struct {
	*models.ComparisonReport
	Documents []ingest.DocumentResult `json:"documentos,omitempty"`
}

// CompareUploads builds a comparison report from up to six uploaded
// statements. The batch is analyzed in isolation: duplicates are removed
// within the batch, nothing is persisted.
func (h *Handler) CompareUploads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "formulário inválido")
		return
	}

	files := r.MultipartForm.File["arquivos"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "envie ao menos um arquivo no campo 'arquivos'")
		return
	}
	if len(files) > ingest.MaxBatchDocuments {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("máximo de %d arquivos por comparação", ingest.MaxBatchDocuments))
		return
	}

	opts, err := h.docOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cardOrigin := r.FormValue("origem_cartao")
	docs := make([]ingest.Document, len(files))
	for i, fh := range files {
		docs[i] = extractUpload(r, fh, cardOrigin)
	}

	mem := store.NewMemory()
	importer := ingest.New(mem, l, opts)
	results, err := importer.ImportBatch(ctx, docs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := mem.Query(store.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	report, err := compare.Build(transactions, compare.Options{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, comparisonResponse{ComparisonReport: report, Documents: results})
}

// queryFilter builds a store filter from request query parameters.
func queryFilter(r *http.Request) store.Filter {
	f := store.Filter{
		CardOrigin: r.URL.Query().Get("origem"),
		Issuer:     r.URL.Query().Get("banco"),
	}
	if raw := r.URL.Query().Get("meses"); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				f.Months = append(f.Months, m)
			}
		}
	}
	if raw := r.URL.Query().Get("limite"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			f.Limit = limit
		}
	}
	return f
}

// storedComparison aggregates persisted transactions into a report.
func (h *Handler) storedComparison(r *http.Request) (*models.ComparisonReport, error) {
	filter := queryFilter(r)
	transactions, err := h.db.Query(store.Filter{CardOrigin: filter.CardOrigin, Issuer: filter.Issuer})
	if err != nil {
		return nil, err
	}
	return compare.Build(transactions, compare.Options{
		Months:     filter.Months,
		CardOrigin: filter.CardOrigin,
	})
}

// Comparison aggregates persisted transactions into the monthly report.
func (h *Handler) Comparison(w http.ResponseWriter, r *http.Request) {
	report, err := h.storedComparison(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// TransactionsList returns persisted transactions matching the filter.
func (h *Handler) TransactionsList(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.db.Query(queryFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_transacoes": len(transactions),
		"transacoes":       transactions,
	})
}

// TransactionUpdateCategory reassigns the category of one transaction,
// identified by fingerprint.
func (h *Handler) TransactionUpdateCategory(w http.ResponseWriter, r *http.Request) {
	fingerprint := r.PathValue("hash")

	var body struct {
		Category string `json:"categoria"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Category == "" {
		writeError(w, http.StatusBadRequest, "informe 'categoria'")
		return
	}

	updated, err := h.db.UpdateCategory(fingerprint, body.Category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "transação não encontrada")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// TransactionDelete removes one transaction by fingerprint.
func (h *Handler) TransactionDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.db.Remove(r.PathValue("hash"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "transação não encontrada")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// TransactionsPurge removes every persisted transaction.
func (h *Handler) TransactionsPurge(w http.ResponseWriter, r *http.Request) {
	removed, err := h.db.RemoveAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.FromContext(r.Context()).Info("transactions_purged", "removed", removed)
	writeJSON(w, http.StatusOK, map[string]int64{"removidas": removed})
}

// ExportComparisonXLSX streams the comparison report as a spreadsheet.
func (h *Handler) ExportComparisonXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.storedComparison(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := export.ComparisonWorkbook(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="comparativo.xlsx"`)
	if err := f.Write(w); err != nil {
		logger.FromContext(r.Context()).Error("xlsx_write_failed", "error", err.Error())
	}
}

// ExportTransactionsCSV streams persisted transactions as CSV.
func (h *Handler) ExportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.db.Query(queryFilter(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transacoes.csv"`)
	if err := export.TransactionsCSV(transactions, w); err != nil {
		logger.FromContext(r.Context()).Error("csv_write_failed", "error", err.Error())
	}
}

// ImportEnqueue stores the uploaded statement and queues a background
// import job. Responds 202 with the job ID.
func (h *Handler) ImportEnqueue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "formulário inválido")
		return
	}

	files := r.MultipartForm.File["arquivo"]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "envie exatamente um arquivo no campo 'arquivo'")
		return
	}

	opts, err := h.docOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "falha ao ler arquivo")
		return
	}
	defer f.Close()

	storedName, err := h.files.Save(fh.Filename, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao armazenar arquivo")
		return
	}

	jobID, err := h.db.CreateJob("import_statement", jobs.ImportStatementPayload{
		StoredFile:    storedName,
		Filename:      fh.Filename,
		CardOrigin:    r.FormValue("origem_cartao"),
		Issuer:        opts.Issuer,
		ReferenceYear: opts.ReferenceYear,
	})
	if err != nil {
		h.files.Delete(storedName)
		writeError(w, http.StatusInternalServerError, "falha ao enfileirar importação")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]int64{"job_id": jobID})
}

// JobStatus returns the current state of a background job.
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "job id inválido")
		return
	}

	job, err := h.db.GetJob(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job não encontrado")
		return
	}

	resp := map[string]any{
		"id":       job.ID,
		"status":   job.Status,
		"progress": job.Progress,
	}
	if job.Result != "" {
		var parsed any
		if err := json.Unmarshal([]byte(job.Result), &parsed); err == nil {
			resp["result"] = parsed
		} else {
			resp["result"] = job.Result
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ImportsList returns recent import runs.
func (h *Handler) ImportsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limite"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	runs, err := h.db.ListImportRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []models.ImportRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"importacoes": runs})
}
