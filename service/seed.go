package service

import (
	"time"

	"github.com/Vecinus/vecinus/model"
)

// DemoActas returns the sample published actas loaded at startup for the
// given community, most recent first. Placeholder data until persistence
// lands.
func DemoActas(community string) []model.Acta {
	return []model.Acta{
		{
			ID:    "a1",
			Title: "Junta Ordinaria - Enero 2024",
			Date:  "2024-01-15",
			ExecutiveSummary: "Se celebró la Junta Ordinaria con asistencia del 78% de los propietarios. " +
				"Se trataron los presupuestos del ejercicio 2024, la renovación del ascensor del bloque A " +
				"y el cambio de horarios de la piscina para la temporada de verano.",
			Agreements: []string{
				"Aprobación de presupuestos 2024 con incremento del 3%",
				"Renovación del ascensor del bloque A por unanimidad (presupuesto: 15.000€)",
				"Nuevo horario de piscina: 10:00-21:00 (junio-septiembre)",
				"Contratación de empresa de jardinería trimestral",
			},
			Transcript: "El presidente abre la sesión a las 19:00 horas con la asistencia del 78% de los propietarios. " +
				"Se procede a la lectura del orden del día.\n\n" +
				"Punto 1 - Presupuestos 2024: El administrador presenta los presupuestos con un incremento del 3% " +
				"respecto al año anterior, justificado por el aumento de costes energéticos. Se somete a votación y " +
				"se aprueba por mayoría.\n\n" +
				"Punto 2 - Renovación ascensor: Se presentan tres presupuestos. Se acuerda por unanimidad aceptar el " +
				"de la empresa Elevadores Madrid S.L. por 15.000€.\n\n" +
				"Punto 3 - Horario piscina: Tras debate, se acuerda mantener el horario de 10:00 a 21:00.\n\n" +
				"Se levanta la sesión a las 20:45 horas.",
			CreatedBy: "Carlos García",
			Community: community,
			Status:    model.StatusPublished,
			Signature: demoSignature,
			SignedBy:  "Carlos García",
			SignedAt:  "2024-01-15T20:50:00Z",
			CreatedAt: time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 15, 20, 50, 0, 0, time.UTC),
		},
		{
			ID:    "a2",
			Title: "Junta Extraordinaria - Diciembre 2023",
			Date:  "2023-12-10",
			ExecutiveSummary: "Junta extraordinaria convocada para tratar la avería urgente del sistema de " +
				"calefacción central. Se aprobó la reparación con carácter urgente y una derrama para cubrir los costes.",
			Agreements: []string{
				"Contratación urgente de reparación de calefacción (8.500€)",
				"Derrama de 50€ por vivienda",
				"Plazo de pago: 30 días",
			},
			Transcript: "Se convoca junta extraordinaria por avería del sistema de calefacción central. " +
				"El administrador expone la situación y presenta el presupuesto de reparación. " +
				"Se aprueba por mayoría la derrama de 50€ por vivienda.",
			CreatedBy: "Carlos García",
			Community: community,
			Status:    model.StatusPublished,
			Signature: demoSignature,
			SignedBy:  "Carlos García",
			SignedAt:  "2023-12-10T20:15:00Z",
			CreatedAt: time.Date(2023, 12, 10, 19, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2023, 12, 10, 20, 15, 0, 0, time.UTC),
		},
	}
}

// demoSignature is a 1x1 white PNG, just enough to satisfy the published-acta
// invariant on seeded data.
const demoSignature = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
