package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/baniakuntest4-alt/arhanud/models"
)

var (
	staffActor = Actor{UserID: "u-staff", Username: "staff1", Role: models.RoleStaff}
	adminActor = Actor{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin}
	verifActor = Actor{UserID: "u-verif", Username: "verifikator1", Role: models.RoleVerifier}
	selfActor  = Actor{UserID: "u-self", Username: "personel1", Role: models.RolePersonnel, NRP: "NRP-001"}
)

type fixture struct {
	store     *memStore
	directory *memDirectory
	audit     *memAudit
	svc       *RequestService
}

func newFixture(nrps ...string) *fixture {
	if len(nrps) == 0 {
		nrps = []string{"NRP-001"}
	}
	f := &fixture{
		store:     newMemStore(),
		directory: newMemDirectory(nrps...),
		audit:     &memAudit{},
	}
	f.svc = NewRequestService(f.store, f.directory, f.audit, nil)
	return f
}

func correctionPayload() map[string]string {
	return map[string]string{
		"field_name": "nama",
		"nilai_lama": "A",
		"nilai_baru": "B",
		"alasan":     "typo on the record",
	}
}

func TestSubmitCorrectionSucceeds(t *testing.T) {
	f := newFixture()

	id, err := f.svc.Submit(staffActor, SubmitInput{
		Type:    models.TypeCorrection,
		NRP:     "NRP-001",
		Payload: correctionPayload(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := f.store.FindByID(id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, staffActor.UserID, stored.SubmittedBy)
	assert.Empty(t, stored.VerifiedBy)
	assert.Empty(t, stored.VerifierNote)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "SUBMIT_REQUEST_CORRECTION", f.audit.entries[0].Action)
}

func TestSubmitCorrectionMissingNewValue(t *testing.T) {
	f := newFixture()

	payload := correctionPayload()
	payload["nilai_baru"] = ""
	_, err := f.svc.Submit(staffActor, SubmitInput{
		Type:    models.TypeCorrection,
		NRP:     "NRP-001",
		Payload: payload,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "nilai_baru")
}

func TestSubmitRequiredFieldsPerType(t *testing.T) {
	cases := []struct {
		reqType models.RequestType
		missing string
		payload map[string]string
	}{
		{models.TypeMutation, "jabatan_tujuan", map[string]string{"jabatan_asal": "Danru"}},
		{models.TypeRetirement, "tanggal_efektif", map[string]string{"jabatan_asal": "Danru"}},
		{models.TypePromotion, "pangkat_baru", map[string]string{"tanggal_efektif": "2026-01-01"}},
		{models.TypeCorrection, "field_name", map[string]string{"nilai_lama": "A", "nilai_baru": "B"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.reqType), func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Submit(staffActor, SubmitInput{Type: tc.reqType, NRP: "NRP-001", Payload: tc.payload})
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.missing)
		})
	}
}

func TestSubmitUnknownSubject(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(staffActor, SubmitInput{
		Type:    models.TypeCorrection,
		NRP:     "NRP-999",
		Payload: correctionPayload(),
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "nrp")
}

func TestSubmitUnknownCorrectionField(t *testing.T) {
	f := newFixture()

	payload := correctionPayload()
	payload["field_name"] = "password"
	_, err := f.svc.Submit(staffActor, SubmitInput{Type: models.TypeCorrection, NRP: "NRP-001", Payload: payload})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "field_name")
}

func TestSubmitPersonnelRoleRestrictions(t *testing.T) {
	f := newFixture("NRP-001", "NRP-002")

	// Non-correction types are off limits for personnel accounts.
	_, err := f.svc.Submit(selfActor, SubmitInput{
		Type: models.TypeMutation,
		NRP:  "NRP-001",
		Payload: map[string]string{
			"jabatan_asal":   "Danru",
			"jabatan_tujuan": "Danton",
		},
	})
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)

	// Corrections for somebody else's record too.
	_, err = f.svc.Submit(selfActor, SubmitInput{Type: models.TypeCorrection, NRP: "NRP-002", Payload: correctionPayload()})
	require.ErrorAs(t, err, &ae)

	// Own correction is fine.
	id, err := f.svc.Submit(selfActor, SubmitInput{Type: models.TypeCorrection, NRP: "NRP-001", Payload: correctionPayload()})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestVerifyUnknownRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Verify(verifActor, "no-such-id", models.StatusApproved, "")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	// Nothing got written.
	all, lerr := f.store.List(RequestFilter{})
	require.NoError(t, lerr)
	assert.Empty(t, all)
	assert.Empty(t, f.directory.applied)
}

func TestVerifyRequiresVerifierRole(t *testing.T) {
	f := newFixture()
	id := submit(t, f, staffActor)

	_, err := f.svc.Verify(adminActor, id, models.StatusApproved, "")

	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	mustStatus(t, f, id, models.StatusPending)
}

func TestVerifyForbidsSelfVerification(t *testing.T) {
	f := newFixture()
	submitter := Actor{UserID: verifActor.UserID, Username: verifActor.Username, Role: models.RoleStaff}
	id := submit(t, f, submitter)

	_, err := f.svc.Verify(verifActor, id, models.StatusApproved, "")

	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	mustStatus(t, f, id, models.StatusPending)
}

func TestVerifyApprovesOnce(t *testing.T) {
	f := newFixture()
	id := submit(t, f, staffActor)

	updated, err := f.svc.Verify(verifActor, id, models.StatusApproved, "ok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, "ok", updated.VerifierNote)
	assert.Equal(t, verifActor.UserID, updated.VerifiedBy)
	require.NotNil(t, updated.VerifiedAt)
	assert.Equal(t, []string{id}, f.directory.applied)

	// Terminal states are frozen: re-verification in either direction fails.
	_, err = f.svc.Verify(verifActor, id, models.StatusRejected, "")
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, models.StatusApproved, ise.Status)
	mustStatus(t, f, id, models.StatusApproved)
}

func TestVerifyRejectSkipsPropagation(t *testing.T) {
	f := newFixture()
	id := submit(t, f, staffActor)

	updated, err := f.svc.Verify(verifActor, id, models.StatusRejected, "incomplete")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Empty(t, f.directory.applied)
}

func TestVerifyPropagationFailure(t *testing.T) {
	f := newFixture()
	f.directory.failWith = errStorageDown
	id := submit(t, f, staffActor)

	updated, err := f.svc.Verify(verifActor, id, models.StatusApproved, "")

	var pe *PropagationError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, pe, errStorageDown)
	// The decision itself stands.
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusApproved, updated.Status)
	mustStatus(t, f, id, models.StatusApproved)
}

func TestVerifyConcurrentDecisionsExactlyOneWins(t *testing.T) {
	f := newFixture()
	id := submit(t, f, staffActor)

	otherVerifier := Actor{UserID: "u-verif-2", Username: "verifikator2", Role: models.RoleVerifier}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.svc.Verify(verifActor, id, models.StatusApproved, "ok")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.svc.Verify(otherVerifier, id, models.StatusRejected, "no")
	}()
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		var ise *InvalidStateError
		require.ErrorAs(t, err, &ise)
		lost++
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	final, err := f.store.FindByID(id)
	require.NoError(t, err)
	assert.NotEqual(t, models.StatusPending, final.Status)
}

func TestListFiltersAndOrders(t *testing.T) {
	f := newFixture()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	seed := []models.Request{
		{ID: "b", NRP: "NRP-001", Type: models.TypeCorrection, Status: models.StatusPending, SubmittedBy: "u-staff", CreatedAt: base},
		{ID: "a", NRP: "NRP-001", Type: models.TypeMutation, Status: models.StatusPending, SubmittedBy: "u-staff", CreatedAt: base},
		{ID: "c", NRP: "NRP-001", Type: models.TypePromotion, Status: models.StatusApproved, SubmittedBy: "u-staff", CreatedAt: base.Add(time.Hour)},
	}
	for i := range seed {
		require.NoError(t, f.store.Create(&seed[i]))
	}

	pending, err := f.svc.List(adminActor, RequestFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, r := range pending {
		assert.Equal(t, models.StatusPending, r.Status)
	}
	// Equal timestamps fall back to id ascending.
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "b", pending[1].ID)

	all, err := f.svc.List(adminActor, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID) // newest first

	_, err = f.svc.List(adminActor, RequestFilter{Status: "bogus"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestListPersonnelSeesOnlyOwnSubmissions(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.store.Create(&models.Request{
		NRP: "NRP-001", Type: models.TypeCorrection, Status: models.StatusPending,
		SubmittedBy: selfActor.UserID, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, f.store.Create(&models.Request{
		NRP: "NRP-001", Type: models.TypeMutation, Status: models.StatusPending,
		SubmittedBy: staffActor.UserID, CreatedAt: time.Now().UTC(),
	}))

	own, err := f.svc.List(selfActor, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, selfActor.UserID, own[0].SubmittedBy)
}

func TestCorrectionEndToEnd(t *testing.T) {
	f := newFixture()

	id, err := f.svc.Submit(selfActor, SubmitInput{
		Type:    models.TypeCorrection,
		NRP:     "NRP-001",
		Payload: map[string]string{"field_name": "nama", "nilai_lama": "A", "nilai_baru": "B"},
	})
	require.NoError(t, err)

	listed, err := f.svc.List(adminActor, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusPending, listed[0].Status)

	_, err = f.svc.Verify(verifActor, id, models.StatusApproved, "ok")
	require.NoError(t, err)

	listed, err = f.svc.List(adminActor, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusApproved, listed[0].Status)
	assert.Equal(t, "ok", listed[0].VerifierNote)
	assert.Equal(t, verifActor.UserID, listed[0].VerifiedBy)

	_, err = f.svc.Verify(verifActor, id, models.StatusApproved, "again")
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
}

func TestGetRespectsVisibility(t *testing.T) {
	f := newFixture()

	req := &models.Request{
		NRP: "NRP-001", Type: models.TypeMutation, Status: models.StatusPending,
		SubmittedBy: staffActor.UserID, CreatedAt: time.Now().UTC(),
		Payload: datatypes.JSON(`{"jabatan_asal":"Danru","jabatan_tujuan":"Danton"}`),
	}
	require.NoError(t, f.store.Create(req))

	got, err := f.svc.Get(adminActor, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)

	_, err = f.svc.Get(selfActor, req.ID)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)

	_, err = f.svc.Get(adminActor, "missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

// submit creates a pending mutation request and returns its id.
func submit(t *testing.T, f *fixture, actor Actor) string {
	t.Helper()
	id, err := f.svc.Submit(actor, SubmitInput{
		Type: models.TypeMutation,
		NRP:  "NRP-001",
		Payload: map[string]string{
			"jabatan_asal":   "Danru",
			"jabatan_tujuan": "Danton",
			"satuan_tujuan":  "Yonarhanud 1",
		},
	})
	require.NoError(t, err)
	return id
}

func mustStatus(t *testing.T, f *fixture, id string, want models.RequestStatus) {
	t.Helper()
	r, err := f.store.FindByID(id)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, want, r.Status)
}
