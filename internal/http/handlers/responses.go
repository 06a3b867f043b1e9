package handlers

import (
	"fmt"

	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
)

// Response bodies mirror what the clinic frontend and the gateway already
// expect, hence the Portuguese copy.
const (
	msgEventIgnored         = "Evento ignorado."
	msgNoText               = "Mensagem sem texto."
	msgNotProcessable       = "Resposta não processável."
	msgPatientNotFound      = "Paciente não encontrado."
	msgNoPendingAppointment = "Nenhum agendamento pendente encontrado para este paciente."
	msgInternalError        = "Erro interno do servidor."
)

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func successResponse(message string) apiResponse {
	return apiResponse{Success: true, Message: message}
}

func failureResponse(message string) apiResponse {
	return apiResponse{Success: false, Message: message}
}

func errorResponse(message string) apiResponse {
	return apiResponse{Success: false, Error: message}
}

func msgResolved(status appointments.Status) string {
	return fmt.Sprintf("Agendamento %s com sucesso.", status.Label())
}
