package scheduling

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"nexia/models"
	"nexia/utils"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// catalogDocument mirrors the services file before validation.
type catalogDocument struct {
	Services []serviceEntry `mapstructure:"services"`
}

type serviceEntry struct {
	Name          string              `mapstructure:"name" validate:"required"`
	Price         *float64            `mapstructure:"price" validate:"omitnil,gte=0"`
	Duration      *int                `mapstructure:"duration" validate:"omitnil,gt=0"`
	Description   string              `mapstructure:"description"`
	Professionals []professionalEntry `mapstructure:"professionals"`
}

type professionalEntry struct {
	Name         string        `mapstructure:"name" validate:"required"`
	Availability []windowEntry `mapstructure:"availability"`
}

var validate = newValidator()

// newValidator reports fields by their catalog key rather than the Go name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "is required",
	"gt":       "must be positive",
	"gte":      "must not be negative",
}

// validateEntry runs the struct tags and returns one error per failed field.
func validateEntry(where string, entry any) error {
	err := validate.Struct(entry)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var errs error
	for _, fe := range fieldErrs {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		errs = multierr.Append(errs, fmt.Errorf("%s: %s %s", where, fe.Field(), msg))
	}
	return errs
}

type windowEntry struct {
	Day   string   `mapstructure:"day"`
	Slots []string `mapstructure:"slots"`
}

// ReadCatalogFile decodes and validates a services file (YAML or JSON, by
// extension). Every problem in the file is reported, not just the first.
func ReadCatalogFile(path string) ([]models.ServiceDefinition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var doc catalogDocument
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	defs, err := validateCatalog(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return defs, nil
}

// validateCatalog converts the loose document into typed definitions. The
// returned error, if any, is a multierr with one entry per problem.
func validateCatalog(doc catalogDocument) ([]models.ServiceDefinition, error) {
	var errs error
	if len(doc.Services) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no services defined"))
	}

	defs := make([]models.ServiceDefinition, 0, len(doc.Services))
	for i, entry := range doc.Services {
		where := fmt.Sprintf("services[%d]", i)
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name != "" {
			where = fmt.Sprintf("%s (%s)", where, entry.Name)
		}
		errs = multierr.Append(errs, validateEntry(where, entry))

		def := models.ServiceDefinition{
			Name:        entry.Name,
			Price:       entry.Price,
			Duration:    entry.Duration,
			Description: strings.TrimSpace(entry.Description),
		}
		for j, p := range entry.Professionals {
			prof, err := validateProfessional(fmt.Sprintf("%s.professionals[%d]", where, j), p)
			errs = multierr.Append(errs, err)
			def.Professionals = append(def.Professionals, prof)
		}
		defs = append(defs, def)
	}

	if errs != nil {
		return nil, errs
	}
	return defs, nil
}

func validateProfessional(where string, p professionalEntry) (models.ProfessionalDefinition, error) {
	p.Name = strings.TrimSpace(p.Name)
	errs := validateEntry(where, p)
	prof := models.ProfessionalDefinition{Name: p.Name}
	for k, w := range p.Availability {
		at := fmt.Sprintf("%s.availability[%d]", where, k)
		if _, ok := ParseWeekday(w.Day); !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown weekday %q", at, w.Day))
		}
		window := models.AvailabilityWindow{Day: strings.TrimSpace(w.Day)}
		for _, raw := range w.Slots {
			r, err := ParseTimeRange(raw)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", at, err))
				continue
			}
			window.Slots = append(window.Slots, r)
		}
		prof.Availability = append(prof.Availability, window)
	}
	return prof, errs
}

// Services is the read-only service catalog.
type Services struct {
	services []*Service
	logger   *zap.Logger
}

func NewServices(defs []models.ServiceDefinition, cal Calendar, resolver *Resolver, logger *zap.Logger) *Services {
	logger = logger.With(zap.String("component", "catalog"))
	services := make([]*Service, 0, len(defs))
	for _, def := range defs {
		services = append(services, NewService(def, cal, resolver, logger))
	}
	logger.Info("loaded services", zap.Int("count", len(services)))
	return &Services{services: services, logger: logger}
}

// LoadCatalog reads the services file and builds the catalog. Any error is
// meant to abort startup.
func LoadCatalog(path string, cal Calendar, resolver *Resolver, logger *zap.Logger) (*Services, error) {
	defs, err := ReadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return NewServices(defs, cal, resolver, logger), nil
}

// GetAll returns the services in catalog order.
func (s *Services) GetAll() []*Service {
	return s.services
}

// Names returns the service names in catalog order.
func (s *Services) Names() []string {
	names := make([]string, 0, len(s.services))
	for _, svc := range s.services {
		names = append(names, svc.Name())
	}
	return names
}

// GetByName resolves a service by name, ignoring case and accents. An exact
// name wins; otherwise the first service whose name contains the query or is
// contained by it.
func (s *Services) GetByName(query string) (*Service, bool) {
	q := utils.NormalizeText(query)
	if q == "" {
		return nil, false
	}
	for _, svc := range s.services {
		if utils.NormalizeText(svc.Name()) == q {
			return svc, true
		}
	}
	for _, svc := range s.services {
		name := utils.NormalizeText(svc.Name())
		if strings.Contains(name, q) || strings.Contains(q, name) {
			s.logger.Debug("service found", zap.String("query", query), zap.String("service", svc.Name()))
			return svc, true
		}
	}
	s.logger.Warn("no service found", zap.String("query", query))
	return nil, false
}
