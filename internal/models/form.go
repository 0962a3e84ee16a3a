package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SectionInformacionGeneral = "informacion-general"
	SectionSedes              = "sedes"
	SectionServicios          = "servicios"
	SectionCapacidad          = "capacidad"
)

var FormSections = []string{
	SectionInformacionGeneral,
	SectionSedes,
	SectionServicios,
	SectionCapacidad,
}

type InformacionGeneral struct {
	NIT               string `json:"nit,omitempty"`
	Naturaleza        string `json:"naturaleza,omitempty"`
	Departamento      string `json:"departamento,omitempty"`
	Municipio         string `json:"municipio,omitempty"`
	RazonSocial       string `json:"razonSocial,omitempty"`
	NombreGerente     string `json:"nombreGerente,omitempty"`
	Telefono          string `json:"telefono,omitempty"`
	Direccion         string `json:"direccion,omitempty"`
	PersonaContacto   string `json:"personaContacto,omitempty"`
	Cargo             string `json:"cargo,omitempty"`
	NumeroSedes       string `json:"numeroSedes,omitempty"`
	CantidadEmpleados string `json:"cantidadEmpleados,omitempty"`
}

type Sede struct {
	NombreSede             string `json:"nombreSede,omitempty"`
	Departamento           string `json:"departamento,omitempty"`
	Ciudad                 string `json:"ciudad,omitempty"`
	Telefono               string `json:"telefono,omitempty"`
	Direccion              string `json:"direccion,omitempty"`
	NivelComplejidad       string `json:"nivelComplejidad,omitempty"`
	NumeroCamas            string `json:"numeroCamas,omitempty"`
	SoftwareAsistencial    string `json:"softwareAsistencial,omitempty"`
	SoftwareAdministrativo string `json:"softwareAdministrativo,omitempty"`
}

type ServicioHabilitado struct {
	NombreServicio string `json:"nombreServicio,omitempty"`
	Ambulatorio    string `json:"ambulatorio,omitempty"`
	Internacion    string `json:"internacion,omitempty"`
	NombreSede     string `json:"nombreSede,omitempty"`
}

type CapacidadInstalada struct {
	Consultorios         string `json:"consultorios,omitempty"`
	ConsultoriosRias     string `json:"consultoriosRias,omitempty"`
	CamasObservacion     string `json:"camasObservacion,omitempty"`
	CamasHospitalizacion string `json:"camasHospitalizacion,omitempty"`
	CamasUci             string `json:"camasUci,omitempty"`
	SalasCirugia         string `json:"salasCirugia,omitempty"`
	Contabilidad         string `json:"contabilidad,omitempty"`
	Facturacion          string `json:"facturacion,omitempty"`
	EmpleadosNomina      string `json:"empleadosNomina,omitempty"`
	PortalEmpleados      string `json:"portalEmpleados,omitempty"`
}

type FacilityForm struct {
	InformacionGeneral   InformacionGeneral   `json:"informacionGeneral"`
	Sedes                []Sede               `json:"sedes"`
	ServiciosHabilitados []ServicioHabilitado `json:"serviciosHabilitados"`
	CapacidadInstalada   CapacidadInstalada   `json:"capacidadInstalada"`
}

// FormContent is what the client auto-saves into form_data.form_content.
type FormContent struct {
	FormData          FacilityForm `json:"formData"`
	CompletedSections []string     `json:"completedSections"`
	TotalPoints       int          `json:"totalPoints"`
	Achievements      []int        `json:"achievements"`
	LastSaved         *time.Time   `json:"lastSaved,omitempty"`
}

// EmptyFormContent mirrors the client's initial state: one blank site and one blank service.
func EmptyFormContent() FormContent {
	return FormContent{
		FormData: FacilityForm{
			Sedes:                []Sede{{}},
			ServiciosHabilitados: []ServicioHabilitado{{}},
		},
		CompletedSections: []string{},
		Achievements:      []int{},
	}
}

type FormData struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	FormContent FormContent `json:"form_content"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
