package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/baniakuntest4-alt/arhanud/models"
)

// Actor is the authenticated caller, built from the JWT claims by the HTTP
// layer. The workflow never trusts identity fields supplied in a body.
type Actor struct {
	UserID   string
	Username string
	Role     models.Role
	NRP      string
}

// RequestStore persists workflow requests.
type RequestStore interface {
	Create(r *models.Request) error
	// FindByID returns (nil, nil) when no request has that id.
	FindByID(id string) (*models.Request, error)
	// List returns requests ordered by created_at descending, id ascending on
	// timestamp ties.
	List(f RequestFilter) ([]models.Request, error)
	// TransitionFromPending applies the decision iff the stored status is
	// still pending, and reports whether the swap happened. This is the
	// compare-and-swap that keeps two concurrent verifiers from both winning.
	TransitionFromPending(id string, to models.RequestStatus, note, verifierID string, at time.Time) (bool, error)
}

// PersonnelDirectory resolves subject NRPs and receives the record updates an
// approval implies.
type PersonnelDirectory interface {
	// FindByNRP returns (nil, nil) when the NRP is unknown.
	FindByNRP(nrp string) (*models.Personnel, error)
	// ApplyApproved performs the record update for an approved request.
	ApplyApproved(req *models.Request) error
}

// AuditRecorder is the best-effort activity sink. Implementations must not
// return; a failed write is logged and swallowed.
type AuditRecorder interface {
	Record(entry models.AuditLog)
}

// RequestFilter narrows a listing. Zero values mean "no constraint".
type RequestFilter struct {
	Status      models.RequestStatus
	Type        models.RequestType
	NRP         string
	SubmittedBy string
	Search      string // free-text match over the payload
	Page        int
	Limit       int
}

// SubmitInput is a new request as supplied by the caller.
type SubmitInput struct {
	Type    models.RequestType
	NRP     string
	Payload map[string]string
}

// RequestService implements the request verification workflow: submission,
// listing, and the pending → approved/rejected decision.
type RequestService struct {
	store     RequestStore
	directory PersonnelDirectory
	audit     AuditRecorder
	log       *logrus.Logger
}

func NewRequestService(store RequestStore, directory PersonnelDirectory, audit AuditRecorder, log *logrus.Logger) *RequestService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RequestService{store: store, directory: directory, audit: audit, log: log}
}

// Submit validates and persists a new pending request, returning its id.
func (s *RequestService) Submit(actor Actor, in SubmitInput) (string, error) {
	if !in.Type.Valid() {
		return "", invalidField("request_type", "unknown type")
	}
	if strings.TrimSpace(in.NRP) == "" {
		return "", invalidField("nrp", "required")
	}

	fields := map[string]string{}
	for _, name := range models.RequiredPayloadFields[in.Type] {
		if strings.TrimSpace(in.Payload[name]) == "" {
			fields[name] = "required"
		}
	}
	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}
	if in.Type == models.TypeCorrection && !models.CorrectableFields[in.Payload["field_name"]] {
		return "", invalidField("field_name", "not a correctable field")
	}

	// Personnel accounts may only request corrections, and only for themselves.
	if actor.Role == models.RolePersonnel {
		if in.Type != models.TypeCorrection {
			return "", &AuthorizationError{Reason: "personnel accounts may only submit correction requests"}
		}
		if actor.NRP == "" || actor.NRP != in.NRP {
			return "", &AuthorizationError{Reason: "corrections may only target your own record"}
		}
	}

	subject, err := s.directory.FindByNRP(in.NRP)
	if err != nil {
		return "", err
	}
	if subject == nil {
		return "", invalidField("nrp", "no personnel record with this NRP")
	}

	payload, err := json.Marshal(in.Payload)
	if err != nil {
		return "", invalidField("payload", "not serializable")
	}

	req := &models.Request{
		NRP:         in.NRP,
		Type:        in.Type,
		Payload:     datatypes.JSON(payload),
		Status:      models.StatusPending,
		SubmittedBy: actor.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(req); err != nil {
		return "", err
	}

	s.audit.Record(models.AuditLog{
		UserID:     actor.UserID,
		Username:   actor.Username,
		Action:     "SUBMIT_REQUEST_" + strings.ToUpper(string(in.Type)),
		EntityType: "request",
		EntityID:   req.ID,
		NewValue:   datatypes.JSON(payload),
	})

	return req.ID, nil
}

// List returns the requests visible to the actor, newest first. Personnel
// accounts only ever see their own submissions.
func (s *RequestService) List(actor Actor, f RequestFilter) ([]models.Request, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalidField("status", "unknown status")
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalidField("request_type", "unknown type")
	}
	if f.Page < 0 || f.Limit < 0 {
		return nil, invalidField("page", "must not be negative")
	}
	if actor.Role == models.RolePersonnel {
		f.SubmittedBy = actor.UserID
	}
	return s.store.List(f)
}

// Get returns a single request, subject to the same visibility rule as List.
func (s *RequestService) Get(actor Actor, id string) (*models.Request, error) {
	req, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{Resource: "request", ID: id}
	}
	if actor.Role == models.RolePersonnel && req.SubmittedBy != actor.UserID {
		return nil, &AuthorizationError{Reason: "not your request"}
	}
	return req, nil
}

// Verify moves one pending request to approved or rejected. The transition is
// conditioned on the stored status still being pending, so of two concurrent
// decisions exactly one wins. On approval the implied record update runs
// afterwards; its failure is reported as a PropagationError while the
// decision itself stands.
func (s *RequestService) Verify(actor Actor, id string, decision models.RequestStatus, note string) (*models.Request, error) {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, invalidField("decision", "must be approved or rejected")
	}

	req, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{Resource: "request", ID: id}
	}
	if required := models.VerifierRoleFor(req.Type); actor.Role != required {
		return nil, &AuthorizationError{Reason: "role " + string(actor.Role) + " may not verify " + string(req.Type) + " requests"}
	}
	if req.SubmittedBy == actor.UserID {
		return nil, &AuthorizationError{Reason: "requests may not be verified by their submitter"}
	}
	if req.Status != models.StatusPending {
		return nil, &InvalidStateError{RequestID: id, Status: req.Status}
	}

	now := time.Now().UTC()
	swapped, err := s.store.TransitionFromPending(id, decision, note, actor.UserID, now)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost the race: somebody else decided first.
		current, ferr := s.store.FindByID(id)
		status := models.RequestStatus("")
		if ferr == nil && current != nil {
			status = current.Status
		}
		return nil, &InvalidStateError{RequestID: id, Status: status}
	}

	updated, err := s.store.FindByID(id)
	if err != nil || updated == nil {
		// The swap happened; reconstruct locally rather than failing.
		updated = req
		updated.Status = decision
		updated.VerifierNote = note
		updated.VerifiedBy = actor.UserID
		updated.VerifiedAt = &now
	}

	s.audit.Record(models.AuditLog{
		UserID:     actor.UserID,
		Username:   actor.Username,
		Action:     "VERIFY_REQUEST_" + strings.ToUpper(string(decision)),
		EntityType: "request",
		EntityID:   id,
		NewValue:   datatypes.JSON(`{"status":"` + string(decision) + `"}`),
	})

	if decision == models.StatusApproved {
		if err := s.directory.ApplyApproved(updated); err != nil {
			s.log.WithError(err).WithField("request_id", id).Error("record update after approval failed")
			return updated, &PropagationError{RequestID: id, Err: err}
		}
	}

	return updated, nil
}
