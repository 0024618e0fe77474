package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"nexia/models"
	"nexia/services/scheduling"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// Tool names exposed to the model.
const (
	ToolListServices            = "list_services"
	ToolGetAvailableSlots       = "get_available_slots"
	ToolGetSlotsForProfessional = "get_slots_for_professional"
	ToolScheduleAppointment     = "schedule_appointment"
)

// Toolbox is the operation surface the agent can invoke. Every method is
// also served over HTTP by the handlers package.
type Toolbox struct {
	catalog *scheduling.Services
	logger  *zap.Logger
}

func NewToolbox(catalog *scheduling.Services, logger *zap.Logger) *Toolbox {
	return &Toolbox{catalog: catalog, logger: logger.With(zap.String("component", "tools"))}
}

// ListServices returns the service names in catalog order.
func (t *Toolbox) ListServices(ctx context.Context) []string {
	t.logger.Info("listing available services")
	return t.catalog.Names()
}

// GetAvailableSlots returns the free slots of the service matching
// serviceName, or an empty list when no service matches.
func (t *Toolbox) GetAvailableSlots(ctx context.Context, serviceName string) []models.CandidateSlot {
	t.logger.Info("getting available slots", zap.String("service", serviceName))
	svc, ok := t.catalog.GetByName(serviceName)
	if !ok {
		return []models.CandidateSlot{}
	}
	return nonNil(svc.ListAvailableSlots(ctx))
}

// GetSlotsForProfessional is GetAvailableSlots restricted to one professional.
func (t *Toolbox) GetSlotsForProfessional(ctx context.Context, serviceName, professionalName string) []models.CandidateSlot {
	t.logger.Info("getting available slots for professional",
		zap.String("service", serviceName),
		zap.String("professional", professionalName))
	svc, ok := t.catalog.GetByName(serviceName)
	if !ok {
		return []models.CandidateSlot{}
	}
	return nonNil(svc.ListSlotsForProfessional(ctx, professionalName))
}

// ScheduleAppointment books the service matching serviceName. An unknown
// service is reported as an error result, never as a Go error.
func (t *Toolbox) ScheduleAppointment(ctx context.Context, serviceName string, req models.BookingRequest) models.BookingResult {
	svc, ok := t.catalog.GetByName(serviceName)
	if !ok {
		t.logger.Warn("service not found for booking",
			zap.String("service", serviceName),
			zap.String("user", req.UserName))
		return models.BookingResult{
			Status:  models.BookingError,
			Message: fmt.Sprintf("Serviço '%s' não encontrado.", serviceName),
		}
	}
	t.logger.Info("scheduling appointment",
		zap.String("user", req.UserName),
		zap.String("service", svc.Name()),
		zap.String("day", req.Day),
		zap.String("time", req.Time))
	return svc.Schedule(ctx, req)
}

func nonNil(slots []models.CandidateSlot) []models.CandidateSlot {
	if slots == nil {
		return []models.CandidateSlot{}
	}
	return slots
}

func stringParam(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

// Declarations describes the tools to the model.
func (t *Toolbox) Declarations() []*genai.FunctionDeclaration {
	serviceName := stringParam("Nome do serviço, como aparece em list_services.")
	return []*genai.FunctionDeclaration{
		{
			Name:        ToolListServices,
			Description: "Lista os nomes dos serviços disponíveis para agendamento.",
		},
		{
			Name:        ToolGetAvailableSlots,
			Description: "Lista os horários livres de um serviço, com profissional, dia da semana, faixa de horário e data.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"service_name": serviceName},
				Required:   []string{"service_name"},
			},
		},
		{
			Name:        ToolGetSlotsForProfessional,
			Description: "Lista os horários livres de um serviço para um profissional específico.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"service_name":      serviceName,
					"professional_name": stringParam("Nome do profissional."),
				},
				Required: []string{"service_name", "professional_name"},
			},
		},
		{
			Name:        ToolScheduleAppointment,
			Description: "Agenda um atendimento no calendário da clínica.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"user_name":         stringParam("Nome completo do paciente."),
					"service_name":      serviceName,
					"day":               stringParam("Dia da semana (ex.: quarta-feira) ou data AAAA-MM-DD."),
					"time":              stringParam("Horário de início no formato HH:MM (24 horas)."),
					"professional_name": stringParam("Profissional desejado. Omita para qualquer profissional disponível."),
				},
				Required: []string{"user_name", "service_name", "day", "time"},
			},
		},
	}
}

// Call runs one model function call and returns its JSON-shaped response.
// Bad arguments and unknown tools are reported back to the model inside the
// response rather than failing the turn.
func (t *Toolbox) Call(ctx context.Context, call genai.FunctionCall) map[string]any {
	arg := func(name string) string {
		if v, ok := call.Args[name].(string); ok {
			return v
		}
		return ""
	}

	var result any
	switch call.Name {
	case ToolListServices:
		result = t.ListServices(ctx)
	case ToolGetAvailableSlots:
		result = t.GetAvailableSlots(ctx, arg("service_name"))
	case ToolGetSlotsForProfessional:
		result = t.GetSlotsForProfessional(ctx, arg("service_name"), arg("professional_name"))
	case ToolScheduleAppointment:
		result = t.ScheduleAppointment(ctx, arg("service_name"), models.BookingRequest{
			UserName:         arg("user_name"),
			Day:              arg("day"),
			Time:             arg("time"),
			ProfessionalName: arg("professional_name"),
		})
	default:
		t.logger.Warn("model called an unknown tool", zap.String("tool", call.Name))
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}

	response, err := toResponse(result)
	if err != nil {
		t.logger.Error("failed to encode tool result", zap.String("tool", call.Name), zap.Error(err))
		return map[string]any{"error": err.Error()}
	}
	return response
}

// toResponse turns a tool result into the object form function responses
// require. Lists are wrapped under "result".
func toResponse(result any) (map[string]any, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, err
	}
	if obj, ok := decoded.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{"result": decoded}, nil
}
