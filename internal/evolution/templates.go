package evolution

import (
	"fmt"
	"time"
)

// Outbound message texts, Portuguese. Formatting follows what patients of the
// clinic application already receive.

// ConfirmationRequest asks the patient to confirm the next day's appointment.
func ConfirmationRequest(patientName string, startsAt time.Time) string {
	return fmt.Sprintf(
		"Olá, %s! Você tem uma sessão de fisioterapia agendada para %s às %s. "+
			"Responda SIM para confirmar ou NÃO para cancelar.",
		firstName(patientName), startsAt.Format("02/01/2006"), startsAt.Format("15:04"),
	)
}

// PatientFeedback acknowledges the patient's reply.
func PatientFeedback(confirmed bool, startsAt time.Time) string {
	if confirmed {
		return fmt.Sprintf(
			"Sua sessão do dia %s às %s foi confirmada. Até lá! 😊",
			startsAt.Format("02/01/2006"), startsAt.Format("15:04"),
		)
	}
	return fmt.Sprintf(
		"Sua sessão do dia %s às %s foi cancelada. Entre em contato com a clínica para remarcar.",
		startsAt.Format("02/01/2006"), startsAt.Format("15:04"),
	)
}

// ProfessionalNotice tells the assigned professional about the patient's answer.
func ProfessionalNotice(patientName string, confirmed bool, startsAt time.Time) string {
	action := "CONFIRMOU"
	if !confirmed {
		action = "CANCELOU"
	}
	return fmt.Sprintf(
		"O paciente %s %s a sessão de %s às %s.",
		patientName, action, startsAt.Format("02/01/2006"), startsAt.Format("15:04"),
	)
}

func firstName(full string) string {
	for i, r := range full {
		if r == ' ' {
			return full[:i]
		}
	}
	return full
}
