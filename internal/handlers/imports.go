package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/importer"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// maxImportSize bounds the uploaded spreadsheet to 10 MiB.
const maxImportSize = 10 << 20

// importVariants maps the upload route variant to the target affiliation.
var importVariants = map[string]models.Affiliation{
	"docentes":    models.AffiliationDocentes,
	"policias":    models.AffiliationPolicia,
	"municipales": models.AffiliationMunicipales,
}

// ImportHandler serves spreadsheet bulk imports.
type ImportHandler struct {
	importer *importer.Importer
}

// NewImportHandler creates a new import handler.
func NewImportHandler(imp *importer.Importer) *ImportHandler {
	return &ImportHandler{importer: imp}
}

// Import handles POST /api/admin/importar/{variante}: multipart upload of an
// xlsx file under the "archivo" field.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	affiliation, ok := importVariants[chi.URLParam(r, "variante")]
	if !ok {
		http.Error(w, "Unknown import variant", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("archivo")
	if err != nil {
		http.Error(w, "Missing archivo field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := importer.ReadRows(file)
	if err != nil {
		http.Error(w, "Invalid spreadsheet", http.StatusBadRequest)
		return
	}

	result := h.importer.Run(r.Context(), rows, affiliation)

	log.WithFields(log.Fields{
		"afiliacion":     affiliation,
		"creados":        result.Created,
		"ya_registrados": result.AlreadyRegistered,
		"duplicados":     result.DuplicateInBatch,
		"con_error":      result.Errored,
	}).Info("import finished")

	writeJSON(w, http.StatusOK, result)
}
