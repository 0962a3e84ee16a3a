package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"artemis/internal/models"
)

// Generator is the seam services depend on. Each call writes a new file; the
// caller owns it and removes it when done.
type Generator interface {
	GenerateFormSummary(data FormSummaryData) (string, error)
}

// DocumentGenerator writes PDFs under RootDir.
type DocumentGenerator struct {
	RootDir  string
	FontPath string // TTF with Latin-1 coverage; core Helvetica is used when missing
	fontName string
}

// docWriter holds the per-document font choice so one generator can serve concurrent requests.
type docWriter struct {
	pdf  *gofpdf.Fpdf
	font string
	tr   func(string) string
}

type FormSummaryData struct {
	OwnerName  string
	OwnerEmail string
	Content    models.FormContent
	CreatedAt  time.Time
	Filename   string
}

func NewDocumentGenerator(rootDir, fontPath string) *DocumentGenerator {
	return &DocumentGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

func (g *DocumentGenerator) GenerateFormSummary(data FormSummaryData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("formulario_%d.pdf", data.CreatedAt.Unix())
	}
	f, err := g.createTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	w := g.newWriter(pdf)
	pdf.SetTitle(w.tr("Formulario de caracterización"), false)
	pdf.SetAuthor("Artemis", false)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(w.font, "", 10)
		pdf.CellFormat(0, 10, w.tr(fmt.Sprintf("Pág. %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(w.font, "B", 18)
	pdf.CellFormat(0, 10, w.tr("FORMULARIO DE CARACTERIZACIÓN"), "", 1, "C", false, 0, "")
	pdf.SetFont(w.font, "", 11)
	sub := fmt.Sprintf("%s <%s>  ·  %s", data.OwnerName, data.OwnerEmail, data.CreatedAt.Format("02/01/2006 15:04"))
	pdf.CellFormat(0, 7, w.tr(sub), "", 1, "C", false, 0, "")
	w.hr()

	content := data.Content
	info := content.FormData.InformacionGeneral
	w.sectionTitle("Información general")
	w.kvLine("NIT", info.NIT)
	w.kvLine("Razón social", info.RazonSocial)
	w.kvLine("Naturaleza", info.Naturaleza)
	w.kvLine("Departamento", info.Departamento)
	w.kvLine("Municipio", info.Municipio)
	w.kvLine("Gerente", info.NombreGerente)
	w.kvLine("Teléfono", info.Telefono)
	w.kvLine("Dirección", info.Direccion)
	w.kvLine("Contacto", fmt.Sprintf("%s (%s)", info.PersonaContacto, info.Cargo))
	w.kvLine("Número de sedes", info.NumeroSedes)
	w.kvLine("Empleados", info.CantidadEmpleados)
	w.hr()

	w.sectionTitle("Sedes")
	for i, s := range content.FormData.Sedes {
		w.subTitle(fmt.Sprintf("%d. %s", i+1, orDash(s.NombreSede)))
		w.kvLine("Ubicación", fmt.Sprintf("%s, %s", s.Ciudad, s.Departamento))
		w.kvLine("Dirección", s.Direccion)
		w.kvLine("Teléfono", s.Telefono)
		w.kvLine("Complejidad", s.NivelComplejidad)
		w.kvLine("Camas", s.NumeroCamas)
		w.kvLine("Software asist.", s.SoftwareAsistencial)
		w.kvLine("Software admin.", s.SoftwareAdministrativo)
	}
	w.hr()

	w.sectionTitle("Servicios habilitados")
	for i, s := range content.FormData.ServiciosHabilitados {
		line := fmt.Sprintf("%d. %s | sede: %s, ambulatorio: %s, internación: %s",
			i+1, orDash(s.NombreServicio), orDash(s.NombreSede), orDash(s.Ambulatorio), orDash(s.Internacion))
		pdf.MultiCell(0, 6, w.tr(line), "", "L", false)
	}
	w.hr()

	c := content.FormData.CapacidadInstalada
	w.sectionTitle("Capacidad instalada")
	w.kvLine("Consultorios", c.Consultorios)
	w.kvLine("Consultorios RIAS", c.ConsultoriosRias)
	w.kvLine("Camas observación", c.CamasObservacion)
	w.kvLine("Camas hosp.", c.CamasHospitalizacion)
	w.kvLine("Camas UCI", c.CamasUci)
	w.kvLine("Salas de cirugía", c.SalasCirugia)
	w.kvLine("Contabilidad", c.Contabilidad)
	w.kvLine("Facturación", c.Facturacion)
	w.kvLine("Nómina", c.EmpleadosNomina)
	w.kvLine("Portal empleados", c.PortalEmpleados)
	w.hr()

	w.sectionTitle("Progreso")
	w.kvLine("Secciones", fmt.Sprintf("%d de %d", len(content.CompletedSections), len(models.FormSections)))
	w.kvLine("Puntos", fmt.Sprintf("%d", content.TotalPoints))
	w.kvLine("Logros", fmt.Sprintf("%d", len(content.Achievements)))

	absPath := f.Name()
	err = pdf.Output(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return absPath, nil
}

func (w *docWriter) sectionTitle(s string) {
	w.pdf.SetFont(w.font, "B", 12)
	w.pdf.CellFormat(0, 7, w.tr(s), "", 1, "L", false, 0, "")
	w.pdf.SetFont(w.font, "", 11)
}

func (w *docWriter) subTitle(s string) {
	w.pdf.SetFont(w.font, "B", 11)
	w.pdf.CellFormat(0, 6, w.tr(s), "", 1, "L", false, 0, "")
	w.pdf.SetFont(w.font, "", 11)
}

func (w *docWriter) kvLine(key, val string) {
	w.pdf.SetFont(w.font, "B", 11)
	w.pdf.CellFormat(45, 6, w.tr(key+":"), "", 0, "L", false, 0, "")
	w.pdf.SetFont(w.font, "", 11)
	w.pdf.CellFormat(0, 6, w.tr(orDash(val)), "", 1, "L", false, 0, "")
}

func (w *docWriter) hr() {
	y := w.pdf.GetY() + 1.5
	w.pdf.SetLineWidth(0.2)
	w.pdf.Line(20, y, 190, y)
	w.pdf.SetY(y + 2)
}

// createTarget opens a uniquely named file under RootDir whose name starts with
// the base of filename, so concurrent exports never share a file.
func (g *DocumentGenerator) createTarget(filename string) (*os.File, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(filename), ".pdf")
	f, err := os.CreateTemp(g.RootDir, stem+"-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create pdf file: %w", err)
	}
	return f, nil
}

// newWriter registers the UTF-8 TTF when present; otherwise it falls back to core
// Helvetica with a cp1252 translator so Spanish accents still render.
func (g *DocumentGenerator) newWriter(pdf *gofpdf.Fpdf) *docWriter {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			pdf.AddUTF8Font(g.fontName, "", g.FontPath)
			pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
			return &docWriter{pdf: pdf, font: g.fontName, tr: func(s string) string { return s }}
		}
	}
	return &docWriter{pdf: pdf, font: "Helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
