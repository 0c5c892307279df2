package handler

import (
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/report-vault/internal/middleware"
	"github.com/iliyamo/report-vault/internal/model"
	"github.com/iliyamo/report-vault/internal/service"
	"github.com/iliyamo/report-vault/internal/utils"
)

// DownloadPath is where a report's file can be fetched; it is echoed as
// the report url.
const DownloadPath = "/api/v1/report/download/"

// ReportHandler bundles dependencies for the /report endpoints.
type ReportHandler struct {
	Reports        *service.ReportService
	MaxUploadBytes int64
}

func NewReportHandler(r *service.ReportService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{Reports: r, MaxUploadBytes: maxUploadBytes}
}

// ----- DTOs -----

// reportResp is the public shape of a report.  The blob key never leaves
// the server.
type reportResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FileName    string    `json:"file_name"`
	User        uint64    `json:"user"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toReportResp(r *model.Report) reportResp {
	return reportResp{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		FileName:    r.FileName,
		User:        r.OwnerID,
		URL:         DownloadPath + strconv.FormatUint(r.ID, 10),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type uploadResp struct {
	Message     string `json:"message"`
	ID          uint64 `json:"id"`
	FileName    string `json:"filename"`
	ReportName  string `json:"reportname"`
	Description string `json:"description"`
	User        string `json:"user"`
}

type updateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type updateResp struct {
	Message string     `json:"message"`
	Report  reportResp `json:"report"`
}

// List: GET /report/list
func (h *ReportHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	reports, err := h.Reports.List(ctx, middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]reportResp, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportResp(r))
	}
	return render(c, http.StatusOK, out)
}

// Upload: POST|PUT /report/upload (multipart: name, description, file)
func (h *ReportHandler) Upload(c echo.Context) error {
	u := middleware.CurrentUser(c)
	file, closeFile, err := h.formFile(c)
	if err != nil {
		return writeError(c, err)
	}
	defer closeFile()

	rep, err := h.Reports.Upload(c.Request().Context(), u, service.UploadInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		File:        file,
	})
	if err != nil {
		return writeError(c, err)
	}
	return render(c, http.StatusOK, uploadResp{
		Message:     MsgUploaded,
		ID:          rep.ID,
		FileName:    rep.FileName,
		ReportName:  rep.Name,
		Description: rep.Description,
		User:        u.Email,
	})
}

// Read: GET /report/read/:id
func (h *ReportHandler) Read(c echo.Context) error {
	id, ok := reportID(c)
	if !ok {
		return fail(c, http.StatusNotFound, MsgReportNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rep, err := h.Reports.Read(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return render(c, http.StatusOK, toReportResp(rep))
}

// Update: PUT /report/update/:id {name?, description?} as JSON or form.
func (h *ReportHandler) Update(c echo.Context) error {
	id, ok := reportID(c)
	if !ok {
		return fail(c, http.StatusNotFound, MsgReportNotFound)
	}
	in, err := bindMetadata(c)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, MsgInvalidInput)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rep, err := h.Reports.Update(ctx, middleware.CurrentUser(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return render(c, http.StatusOK, updateResp{Message: MsgReportUpdated, Report: toReportResp(rep)})
}

// UpdateFile: PUT /report/update_file/:id (multipart: file)
func (h *ReportHandler) UpdateFile(c echo.Context) error {
	id, ok := reportID(c)
	if !ok {
		return fail(c, http.StatusNotFound, MsgReportNotFound)
	}
	file, closeFile, err := h.formFile(c)
	if err != nil {
		return writeError(c, err)
	}
	defer closeFile()

	rep, err := h.Reports.UpdateFile(c.Request().Context(), middleware.CurrentUser(c), id, file)
	if err != nil {
		return writeError(c, err)
	}
	return render(c, http.StatusOK, updateResp{Message: MsgFileUpdated, Report: toReportResp(rep)})
}

// Download: GET /report/download/:id.  Streams the stored file as an
// attachment named after its secure filename.
func (h *ReportHandler) Download(c echo.Context) error {
	id, ok := reportID(c)
	if !ok {
		return fail(c, http.StatusNotFound, MsgReportNotFound)
	}

	rep, rc, err := h.Reports.Download(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return writeError(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": rep.FileName}))
	return c.Stream(http.StatusOK, contentType(rep.FileName), rc)
}

// Delete: DELETE /report/delete/:id
func (h *ReportHandler) Delete(c echo.Context) error {
	id, ok := reportID(c)
	if !ok {
		return fail(c, http.StatusNotFound, MsgReportNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Reports.Delete(ctx, middleware.CurrentUser(c), id); err != nil {
		return writeError(c, err)
	}
	return message(c, http.StatusOK, MsgReportDeleted)
}

// formFile opens the "file" part.  A missing part yields a nil input so
// the service reports it as invalid input; an oversize part is an invalid
// file.
func (h *ReportHandler) formFile(c echo.Context) (*service.FileInput, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, noop, nil
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		return nil, noop, service.ErrInvalidFile
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.FileInput{Name: fh.Filename, Body: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// bindMetadata reads name/description and remembers which were present.
func bindMetadata(c echo.Context) (service.MetadataInput, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		params, err := c.FormParams()
		if err != nil {
			return service.MetadataInput{}, err
		}
		var in service.MetadataInput
		if v, ok := params["name"]; ok && len(v) > 0 {
			in.Name = &v[0]
		}
		if v, ok := params["description"]; ok && len(v) > 0 {
			in.Description = &v[0]
		}
		return in, nil
	}

	var req updateReq
	if err := c.Bind(&req); err != nil {
		return service.MetadataInput{}, err
	}
	return service.MetadataInput{Name: req.Name, Description: req.Description}, nil
}

// reportID parses the :id path parameter.  Anything that is not a positive
// integer cannot name a report and is treated as not found.
func reportID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

var contentTypes = map[string]string{
	"txt":  "text/plain; charset=utf-8",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

func contentType(fileName string) string {
	if ext, ok := utils.AllowedExtension(fileName); ok {
		if ct, ok := contentTypes[ext]; ok {
			return ct
		}
	}
	return echo.MIMEOctetStream
}
