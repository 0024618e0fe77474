package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nexia/models"
	"nexia/services/calendar"

	"go.uber.org/zap"
)

// Calendar is the live availability source a Service books against. The
// calendar is shared by every professional of every service.
type Calendar interface {
	FreeSlots(ctx context.Context, candidates []calendar.Interval) []bool
	IsSlotFree(ctx context.Context, start, end time.Time) bool
	CreateEvent(ctx context.Context, in calendar.EventInput) (string, bool)
}

// Service is one bookable catalog entry.
type Service struct {
	def      models.ServiceDefinition
	calendar Calendar
	resolver *Resolver
	logger   *zap.Logger
}

func NewService(def models.ServiceDefinition, cal Calendar, resolver *Resolver, logger *zap.Logger) *Service {
	return &Service{
		def:      def,
		calendar: cal,
		resolver: resolver,
		logger:   logger.With(zap.String("service", def.Name)),
	}
}

func (s *Service) Name() string { return s.def.Name }

func (s *Service) Price() *float64 { return s.def.Price }

// Duration is the appointment length in minutes, 0 when not configured.
func (s *Service) Duration() int {
	if s.def.Duration == nil {
		return 0
	}
	return *s.def.Duration
}

func (s *Service) Description() string { return s.def.Description }

func (s *Service) Professionals() []models.ProfessionalDefinition { return s.def.Professionals }

func (s *Service) Definition() models.ServiceDefinition { return s.def }

func (s *Service) length() time.Duration {
	return time.Duration(s.Duration()) * time.Minute
}

// offers reports whether prof has a generated slot starting at minuteOfDay
// on weekday d.
func (s *Service) offers(prof models.ProfessionalDefinition, d time.Weekday, minuteOfDay int) bool {
	want := FormatClock(minuteOfDay)
	for _, window := range prof.Availability {
		if wd, ok := ParseWeekday(window.Day); !ok || wd != d {
			continue
		}
		for _, r := range window.Slots {
			for slot := range GenerateSlots(r, s.Duration()) {
				if slot.Start == want {
					return true
				}
			}
		}
	}
	return false
}

func (s *Service) findProfessional(name string) (models.ProfessionalDefinition, bool) {
	name = strings.TrimSpace(name)
	for _, prof := range s.def.Professionals {
		if strings.EqualFold(prof.Name, name) {
			return prof, true
		}
	}
	return models.ProfessionalDefinition{}, false
}

// ListAvailableProfessionals returns, in catalog order, the professionals
// who have a slot starting exactly at clock on day and whose interval the
// calendar reports free. Unparseable input yields an empty list.
func (s *Service) ListAvailableProfessionals(ctx context.Context, day, clock string) []string {
	s.logger.Debug("checking available professionals", zap.String("day", day), zap.String("time", clock))

	minutes, err := ParseClock(clock)
	if err != nil {
		s.logger.Debug("rejecting time", zap.Error(err))
		return nil
	}
	ref, err := s.resolver.ParseDay(day)
	if err != nil {
		s.logger.Debug("rejecting day", zap.Error(err))
		return nil
	}
	start, err := s.resolver.Occurrence(ref, minutes)
	if err != nil {
		s.logger.Debug("no occurrence", zap.Error(err))
		return nil
	}

	var available []string
	checked, free := false, false
	for _, prof := range s.def.Professionals {
		if !s.offers(prof, ref.Weekday, minutes) {
			continue
		}
		// One shared calendar: the interval check is the same for everyone.
		if !checked {
			free = s.calendar.IsSlotFree(ctx, start, start.Add(s.length()))
			checked = true
		}
		if free {
			available = append(available, prof.Name)
		}
	}

	s.logger.Debug("available professionals", zap.Strings("professionals", available))
	return available
}

// ListAvailableSlots returns the free candidate slots of every professional,
// professional then window then slot order.
func (s *Service) ListAvailableSlots(ctx context.Context) []models.CandidateSlot {
	return s.availableSlots(ctx, s.def.Professionals)
}

// ListSlotsForProfessional is ListAvailableSlots for one professional,
// matched by name ignoring case. An unknown name yields an empty list.
func (s *Service) ListSlotsForProfessional(ctx context.Context, name string) []models.CandidateSlot {
	prof, ok := s.findProfessional(name)
	if !ok {
		s.logger.Debug("unknown professional", zap.String("professional", name))
		return nil
	}
	return s.availableSlots(ctx, []models.ProfessionalDefinition{prof})
}

func (s *Service) availableSlots(ctx context.Context, profs []models.ProfessionalDefinition) []models.CandidateSlot {
	var (
		slots     []models.CandidateSlot
		intervals []calendar.Interval
	)
	for _, prof := range profs {
		for _, window := range prof.Availability {
			wd, ok := ParseWeekday(window.Day)
			if !ok {
				continue
			}
			for _, r := range window.Slots {
				for slot := range GenerateSlots(r, s.Duration()) {
					minutes, _ := ParseClock(slot.Start)
					start, err := s.resolver.NextWeekday(wd, minutes)
					if err != nil {
						continue
					}
					slots = append(slots, models.CandidateSlot{
						Professional: prof.Name,
						Day:          window.Day,
						Slot:         slot.String(),
						Date:         start.Format("2006-01-02"),
					})
					intervals = append(intervals, calendar.Interval{Start: start, End: start.Add(s.length())})
				}
			}
		}
	}

	free := s.calendar.FreeSlots(ctx, intervals)
	available := slots[:0]
	for i, slot := range slots {
		if free[i] {
			available = append(available, slot)
		}
	}
	s.logger.Debug("available slots", zap.Int("candidates", len(slots)), zap.Int("free", len(available)))
	return available
}

// Schedule books the first candidate professional still free at the
// requested day and time. Running out of candidates is a normal
// no-availability outcome, not an error.
func (s *Service) Schedule(ctx context.Context, req models.BookingRequest) models.BookingResult {
	who := req.ProfessionalName
	if who == "" {
		who = "any available professional"
	}
	s.logger.Info("attempting to schedule",
		zap.String("user", req.UserName),
		zap.String("day", req.Day),
		zap.String("time", req.Time),
		zap.String("professional", who))

	if s.Duration() <= 0 {
		s.logger.Error("service has no duration configured")
		return models.BookingResult{
			Status:  models.BookingError,
			Message: fmt.Sprintf("O serviço %s não tem duração configurada.", s.Name()),
		}
	}

	var candidates []string
	if req.ProfessionalName != "" {
		candidates = []string{req.ProfessionalName}
	} else {
		candidates = s.ListAvailableProfessionals(ctx, req.Day, req.Time)
	}

	minutes, timeErr := ParseClock(req.Time)
	ref, dayErr := s.resolver.ParseDay(req.Day)

	for _, name := range candidates {
		if timeErr != nil || dayErr != nil {
			break
		}
		prof, ok := s.findProfessional(name)
		if !ok || !s.offers(prof, ref.Weekday, minutes) {
			s.logger.Debug("professional does not offer this slot", zap.String("professional", name))
			continue
		}
		start, err := s.resolver.Occurrence(ref, minutes)
		if err != nil {
			continue
		}
		end := start.Add(s.length())

		// Re-check right before booking; the slot may have been taken since
		// it was discovered.
		if !s.calendar.IsSlotFree(ctx, start, end) {
			continue
		}

		eventID, created := s.calendar.CreateEvent(ctx, calendar.EventInput{
			Summary:     fmt.Sprintf("%s - %s", req.UserName, s.Name()),
			Description: fmt.Sprintf("Profissional: %s", prof.Name),
			Start:       start,
			End:         end,
		})
		if !created {
			return models.BookingResult{
				Status:  models.BookingError,
				Message: "Não foi possível registrar o agendamento no calendário. Por favor, tente novamente.",
			}
		}

		s.logger.Info("appointment scheduled",
			zap.String("eventID", eventID),
			zap.String("professional", prof.Name),
			zap.Time("start", start))
		msg := fmt.Sprintf("%s agendado com %s para %s, %s às %s.",
			s.Name(), prof.Name, s.resolver.DayLabel(ref), start.Format("02/01/2006"), start.Format("15:04"))
		return models.BookingResult{
			Status:       models.BookingSuccess,
			Message:      msg,
			EventID:      eventID,
			Professional: prof.Name,
			Start:        &start,
		}
	}

	s.logger.Warn("no availability", zap.String("day", req.Day), zap.String("time", req.Time))
	return models.BookingResult{
		Status:  models.BookingNoAvailability,
		Message: fmt.Sprintf("Todos os profissionais estão ocupados nesse horário para %s na %s às %s.", s.Name(), req.Day, req.Time),
	}
}
