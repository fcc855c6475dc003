package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/shenikar/traffic_violation_reporting/internal/client"
	"github.com/shenikar/traffic_violation_reporting/internal/location"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/service"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/mock_orchestrator.go -package=mocks

type IncidentIDSource interface {
	GenerateIncidentID(ctx context.Context) (string, error)
}

type MediaUploader interface {
	UploadMany(ctx context.Context, files []*models.EvidenceFile, incidentID string) *models.UploadBatch
}

type ReportSubmitter interface {
	SubmitReport(ctx context.Context, report *models.Report) (*models.Report, error)
}

// DeviceReleaser освобождает камеру после успешной отправки или сброса формы
type DeviceReleaser interface {
	Release()
}

// Шаги прогресса отправки
const (
	StepIdle = iota
	StepGeneratingID
	StepIDGenerated
	StepUploading
	StepUploaded
	StepSubmitting
	StepSubmitted
)

var stepLabels = map[int]string{
	StepIdle:         "",
	StepGeneratingID: "Generating unique incident ID...",
	StepIDGenerated:  "Incident ID generated successfully",
	StepUploading:    "Uploading media file to cloud storage...",
	StepUploaded:     "Media file uploaded successfully",
	StepSubmitting:   "Submitting report to database...",
	StepSubmitted:    "Report submitted successfully!",
}

// Progress - текущий шаг отправки и его подпись
type Progress struct {
	Step  int
	Label string
}

type ProgressFunc func(Progress)

// Form - данные заявления на клиенте
type Form struct {
	Description string
	Location    *models.Location
	Evidence    []*models.EvidenceFile
}

// Status - снимок состояния отправки
type Status struct {
	Progress
	Submitted  bool
	IncidentID string
	Err        error
}

// Orchestrator последовательно выполняет отправку: код инцидента, загрузка файла, запись.
// Каждый этап выполняется один раз; при ошибке отправка прерывается, форма сохраняется.
type Orchestrator struct {
	ids       IncidentIDSource
	uploader  MediaUploader
	submitter ReportSubmitter
	devices   DeviceReleaser
	logger    *logrus.Logger
	maxSize   int64

	inFlight atomic.Bool

	mu     sync.Mutex
	form   Form
	status Status
}

func NewOrchestrator(
	ids IncidentIDSource,
	uploader MediaUploader,
	submitter ReportSubmitter,
	devices DeviceReleaser,
	logger *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		ids:       ids,
		uploader:  uploader,
		submitter: submitter,
		devices:   devices,
		logger:    logger,
		maxSize:   models.MaxEvidenceSize,
	}
}

func (o *Orchestrator) SetDescription(description string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.Description = description
}

func (o *Orchestrator) SetLocation(loc models.Location) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.Location = &loc
}

// SetEvidence заменяет все приложенные файлы
func (o *Orchestrator) SetEvidence(files ...*models.EvidenceFile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.Evidence = files
}

func (o *Orchestrator) Form() Form {
	o.mu.Lock()
	defer o.mu.Unlock()
	form := o.form
	form.Evidence = append([]*models.EvidenceFile(nil), o.form.Evidence...)
	return form
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Reset очищает форму и состояние отправки
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.form = Form{}
	o.status = Status{}
	o.mu.Unlock()

	if o.devices != nil {
		o.devices.Release()
	}
}

// Submit отправляет текущую форму. Запись в хранилище - последний шаг и выполняется
// только после успешной загрузки файла.
func (o *Orchestrator) Submit(ctx context.Context, progress ProgressFunc) (*models.Report, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer o.inFlight.Store(false)

	form := o.Form()
	o.setStep(StepIdle, progress)

	if err := o.validate(form); err != nil {
		return nil, o.fail(err)
	}
	evidence := presentEvidence(form.Evidence)[0]

	log := o.logger.WithFields(logrus.Fields{"component": "submission", "file": evidence.Name})

	o.setStep(StepGeneratingID, progress)
	incidentID, err := o.ids.GenerateIncidentID(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to generate incident ID")
		return nil, o.fail(stageError(StageGenerateID, err, "Failed to generate incident ID"))
	}
	log = log.WithField("incident_id", incidentID)
	o.setStep(StepIDGenerated, progress)

	o.setStep(StepUploading, progress)
	batch := o.uploader.UploadMany(ctx, []*models.EvidenceFile{evidence}, incidentID)
	if len(batch.Errors) > 0 {
		log.WithError(multierr.Combine(batch.Errors...)).Error("Media upload errors")
		return nil, o.fail(uploadError(batch.Errors))
	}
	if len(batch.URLs) == 0 {
		return nil, o.fail(&StageError{
			Stage:   StageUpload,
			Kind:    KindTransient,
			Message: "No media files were successfully uploaded",
		})
	}
	o.setStep(StepUploaded, progress)

	o.setStep(StepSubmitting, progress)
	report := &models.Report{
		IncidentID:  incidentID,
		Description: form.Description,
		City:        orDefault(form.Location.City, location.FallbackCity),
		State:       orDefault(form.Location.State, location.FallbackState),
		Latitude:    form.Location.Latitude,
		Longitude:   form.Location.Longitude,
		MediaURLs:   batch.URLs,
		Status:      models.StatusPending,
	}
	saved, err := o.submitter.SubmitReport(ctx, report)
	if err != nil {
		log.WithError(err).Error("Failed to submit report")
		return nil, o.fail(stageError(StageInsert, err, "Failed to submit report"))
	}

	o.mu.Lock()
	o.form.Evidence = nil
	o.status.Submitted = true
	o.status.IncidentID = incidentID
	o.status.Err = nil
	o.mu.Unlock()
	o.setStep(StepSubmitted, progress)

	if o.devices != nil {
		o.devices.Release()
	}
	log.Info("Report submitted")
	return saved, nil
}

func (o *Orchestrator) validate(form Form) *StageError {
	evidence := presentEvidence(form.Evidence)
	switch {
	case len(evidence) == 0:
		return validationError("Please capture one photo or video as evidence")
	case len(evidence) != 1:
		return validationError("Please capture exactly one photo or video as evidence")
	case evidence[0].Size() == 0:
		return validationError("The captured file is empty. Please capture the photo or video again.")
	case !evidence[0].IsImage() && !evidence[0].IsVideo():
		return validationError("Evidence must be a photo or video")
	case evidence[0].Size() > o.maxSize:
		return validationError("File size must not exceed 10MB. Please capture a smaller photo or video.")
	case strings.TrimSpace(form.Description) == "":
		return validationError("Please describe the violation")
	case utf8.RuneCountInString(form.Description) > models.MaxDescriptionLength:
		return validationError(fmt.Sprintf("Description must not exceed %d characters", models.MaxDescriptionLength))
	case form.Location == nil:
		return validationError("Please get your current location before submitting")
	}
	return nil
}

// presentEvidence отбрасывает пустые слоты
func presentEvidence(files []*models.EvidenceFile) []*models.EvidenceFile {
	present := make([]*models.EvidenceFile, 0, len(files))
	for _, f := range files {
		if f != nil {
			present = append(present, f)
		}
	}
	return present
}

func (o *Orchestrator) setStep(step int, progress ProgressFunc) {
	p := Progress{Step: step, Label: stepLabels[step]}

	o.mu.Lock()
	o.status.Progress = p
	if step == StepIdle {
		o.status.Err = nil
	}
	o.mu.Unlock()

	if progress != nil {
		progress(p)
	}
}

func (o *Orchestrator) fail(err *StageError) error {
	o.mu.Lock()
	o.status.Err = err
	o.mu.Unlock()
	return err
}

func validationError(message string) *StageError {
	return &StageError{Stage: StageValidate, Kind: KindValidation, Message: message}
}

// stageError сохраняет сообщение сервера, если оно есть
func stageError(stage Stage, err error, fallback string) *StageError {
	message := fallback
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return &StageError{Stage: stage, Kind: classify(err), Message: message, Err: err}
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func uploadError(errs []error) *StageError {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, errorMessage(err))
	}
	combined := multierr.Combine(errs...)
	return &StageError{
		Stage:   StageUpload,
		Kind:    classify(errs[0]),
		Message: "Failed to upload media files: " + strings.Join(messages, ", "),
		Err:     combined,
	}
}

func classify(err error) Kind {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrConflict), errors.Is(err, service.ErrDuplicateIncident):
		return KindConflict
	case errors.Is(err, client.ErrBadRequest), errors.Is(err, service.ErrValidation):
		return KindValidation
	case errors.Is(err, service.ErrExhaustedRetries):
		return KindExhausted
	case errors.As(err, &apiErr) && apiErr.Code == string(KindExhausted):
		return KindExhausted
	default:
		return KindTransient
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
