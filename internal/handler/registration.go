package handler

import (
	"context"           // request-scoped timeouts for store calls
	"encoding/base64"   // refid query parameter decoding
	"errors"            // sentinel comparisons
	"mime/multipart"    // uploaded file headers
	"net/http"          // status codes and cookies
	"net/url"           // success redirect query building
	"strings"           // field trimming
	"time"              // timeouts and event timestamps

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/fieldreg/member-registration/internal/config"
	"github.com/fieldreg/member-registration/internal/middleware"
	"github.com/fieldreg/member-registration/internal/model"
	"github.com/fieldreg/member-registration/internal/queue"
	"github.com/fieldreg/member-registration/internal/repository"
	"github.com/fieldreg/member-registration/internal/rollnumber"
	"github.com/fieldreg/member-registration/internal/session"
	"github.com/fieldreg/member-registration/internal/upload"
	"github.com/fieldreg/member-registration/internal/utils"
)

// submitMaxAttempts bounds how many times submit re-allocates after a
// duplicate-roll conflict before giving up with a server error.  One
// retry already covers the realistic race window; five is paranoia.
const submitMaxAttempts = 5

// RegistrationHandler bundles dependencies for the registration flow.
type RegistrationHandler struct {
	Cfg       config.Config
	Store     repository.RegistrationStore
	Referrals repository.ReferralStore // nil disables the referral gate
	Sessions  session.Store
	Alloc     *rollnumber.Allocator
	Uploads   *upload.Manager
	// Publish sends the post-persist event.  nil disables publishing;
	// errors are logged by the publisher and never fail the request.
	Publish func(ctx context.Context, ev queue.RegistrationSubmittedEvent) error
}

func NewRegistrationHandler(cfg config.Config, store repository.RegistrationStore,
	referrals repository.ReferralStore, sessions session.Store,
	alloc *rollnumber.Allocator, uploads *upload.Manager) *RegistrationHandler {
	return &RegistrationHandler{
		Cfg:       cfg,
		Store:     store,
		Referrals: referrals,
		Sessions:  sessions,
		Alloc:     alloc,
		Uploads:   uploads,
	}
}

// ----- form DTO -----

// previewForm is the validated shape of the registration form.  Fields
// are bound by name; anything else a client posts is simply not read.
type previewForm struct {
	MembershipType string
	FamilyName     string
	FirstName      string
	MiddleName     string
	Gender         string
	MobilePhone    string
	EmailAddress   string
	Birthday       string
	Address        string
	Municipality   string
	Baranggay      string
	Province       string
	Zip            string
	IDType         string
	CivilStatus    string
	PrsDate        string
	AgreeToTerms   bool
}

func bindPreviewForm(c echo.Context) previewForm {
	field := func(name string) string { return strings.TrimSpace(c.FormValue(name)) }
	return previewForm{
		MembershipType: field("membership_type"),
		FamilyName:     field("family_name"),
		FirstName:      field("first_name"),
		MiddleName:     field("middle_name"),
		Gender:         field("gender"),
		MobilePhone:    field("mobile_phone"),
		EmailAddress:   field("email_address"),
		Birthday:       field("birthday"),
		Address:        field("address"),
		Municipality:   field("municipality"),
		Baranggay:      field("baranggay"),
		Province:       field("province"),
		Zip:            field("zip"),
		IDType:         field("id_type"),
		CivilStatus:    field("civil_status"),
		PrsDate:        field("prs_date"),
		AgreeToTerms:   field("agree_to_terms") == "on",
	}
}

// toModel assembles the durable record from the validated form, the
// session-held roll number and referral id, and the stored image paths.
func (f previewForm) toModel(roll, refid string, files upload.Files) model.Registration {
	return model.Registration{
		RollNumber:     roll,
		MembershipType: f.MembershipType,
		FamilyName:     f.FamilyName,
		FirstName:      f.FirstName,
		MiddleName:     f.MiddleName,
		Gender:         f.Gender,
		MobilePhone:    f.MobilePhone,
		EmailAddress:   f.EmailAddress,
		Birthday:       f.Birthday,
		Address:        f.Address,
		Municipality:   f.Municipality,
		Baranggay:      f.Baranggay,
		Province:       f.Province,
		Zip:            f.Zip,
		IDType:         f.IDType,
		SelfiePath:     files.Selfie,
		IDFrontPath:    files.IDFront,
		IDBackPath:     files.IDBack,
		AgreeToTerms:   f.AgreeToTerms,
		CivilStatus:    f.CivilStatus,
		PrsDate:        f.PrsDate,
		RefID:          refid,
	}
}

// ----- handlers -----

// Welcome renders the entry page.  When a refid query parameter is
// present it is base64-decoded and validated: a malformed encoding is a
// hard 400, an unknown or inactive id renders the page with an invalid
// notice, and a valid id is stored in the session for attachment to the
// final record.
func (h *RegistrationHandler) Welcome(c echo.Context) error {
	data := echo.Map{}
	if raw := c.QueryParam("refid"); raw != "" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		refid := strings.TrimSpace(string(decoded))
		if err != nil || refid == "" {
			return c.String(http.StatusBadRequest, "malformed refid parameter")
		}
		if h.Referrals == nil {
			// No referral collaborator configured on this deployment.  The
			// refid was well-formed, so don't call it invalid.
			data["ReferralsUnsupported"] = true
			return c.Render(http.StatusOK, "welcome.html", data)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		ref, err := h.Referrals.Lookup(ctx, refid)
		switch {
		case errors.Is(err, repository.ErrUnknownReferral):
			data["InvalidReferral"] = true
		case err != nil:
			c.Logger().Errorf("referral lookup failed: %v", err)
			return c.String(http.StatusInternalServerError, "referral lookup failed")
		default:
			sid, sess, err := h.ensureSession(c)
			if err != nil {
				return c.String(http.StatusInternalServerError, "session setup failed")
			}
			sess.RefID = ref.RefID
			if err := h.Sessions.Set(ctx, sid, sess); err != nil {
				c.Logger().Errorf("session save failed: %v", err)
				return c.String(http.StatusInternalServerError, "session setup failed")
			}
			middleware.SetCurrentSession(c, sid, sess)
			data["ReferralName"] = ref.Name
		}
	}
	return c.Render(http.StatusOK, "welcome.html", data)
}

// Start allocates the visitor's roll number and marks the session
// started, then sends them to the form.  Re-entering /start with a live
// started session keeps the already-allocated number.
func (h *RegistrationHandler) Start(c echo.Context) error {
	sid, sess, err := h.ensureSession(c)
	if err != nil {
		return c.String(http.StatusInternalServerError, "session setup failed")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !sess.Started || sess.RollNumber == "" {
		roll, err := h.Alloc.Allocate(ctx)
		if err != nil {
			c.Logger().Errorf("roll number allocation failed: %v", err)
			return c.String(http.StatusInternalServerError, "could not allocate a roll number")
		}
		sess.Started = true
		sess.RollNumber = roll
		if err := h.Sessions.Set(ctx, sid, sess); err != nil {
			c.Logger().Errorf("session save failed: %v", err)
			return c.String(http.StatusInternalServerError, "session setup failed")
		}
		middleware.SetCurrentSession(c, sid, sess)
	}
	return c.Redirect(http.StatusSeeOther, "/register")
}

// RegisterForm renders the registration form pre-filled with the
// session's roll number, the agent id and the referral id if present.
// Reachable only through the RequireStarted gate.
func (h *RegistrationHandler) RegisterForm(c echo.Context) error {
	sess, _, _ := middleware.CurrentSession(c)
	return c.Render(http.StatusOK, "form.html", echo.Map{
		"RollNumber": sess.RollNumber,
		"AgentID":    h.Cfg.AgentID,
		"RefID":      sess.RefID,
	})
}

// Preview validates the posted fields, stores the uploaded images under
// their roll-number-qualified names, captures everything in the session
// and shows it back to the visitor.  Missing required fields or a fully
// empty upload set send the visitor back to the form.
func (h *RegistrationHandler) Preview(c echo.Context) error {
	sess, sid, _ := middleware.CurrentSession(c)

	form := bindPreviewForm(c)
	if form.FamilyName == "" || form.FirstName == "" {
		return c.Redirect(http.StatusSeeOther, "/register")
	}

	selfieFH := formFile(c, "selfie")
	frontFH := formFile(c, "id_front")
	backFH := formFile(c, "id_back")
	if selfieFH == nil && frontFH == nil && backFH == nil {
		return c.Redirect(http.StatusSeeOther, "/register")
	}

	tmpSelfie, tmpFront, tmpBack, err := h.ingestAll(selfieFH, frontFH, backFH)
	if err != nil {
		c.Logger().Errorf("ingesting uploads failed: %v", err)
		return c.String(http.StatusInternalServerError, "storing your uploads failed")
	}
	files, err := h.Uploads.Finalize(sess.RollNumber, tmpSelfie, tmpFront, tmpBack)
	if err != nil {
		c.Logger().Errorf("finalizing uploads failed: %v", err)
		return c.String(http.StatusInternalServerError, "storing your uploads failed")
	}

	reg := form.toModel(sess.RollNumber, sess.RefID, files)
	sess.Form = &reg

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.Set(ctx, sid, sess); err != nil {
		c.Logger().Errorf("session save failed: %v", err)
		return c.String(http.StatusInternalServerError, "session save failed")
	}
	middleware.SetCurrentSession(c, sid, sess)
	return c.Render(http.StatusOK, "preview.html", echo.Map{"Form": reg})
}

// ingestAll copies the submitted parts into the upload directory.  Absent
// parts yield empty paths.
func (h *RegistrationHandler) ingestAll(selfie, front, back *multipart.FileHeader) (string, string, string, error) {
	tmpSelfie, err := h.Uploads.Ingest(selfie)
	if err != nil {
		return "", "", "", err
	}
	tmpFront, err := h.Uploads.Ingest(front)
	if err != nil {
		return "", "", "", err
	}
	tmpBack, err := h.Uploads.Ingest(back)
	if err != nil {
		return "", "", "", err
	}
	return tmpSelfie, tmpFront, tmpBack, nil
}

// Submit persists the previewed record.  Uniqueness is enforced by the
// store at insert time; on a duplicate-roll conflict the handler draws a
// fresh number, re-keys the stored images and retries.  After a
// successful insert the event is published, the session is destroyed
// synchronously and the visitor is redirected to /success with the roll
// number and first name carried explicitly in the query — the session is
// already gone by then.
func (h *RegistrationHandler) Submit(c echo.Context) error {
	sess, sid, _ := middleware.CurrentSession(c)
	if sess.Form == nil {
		return c.Redirect(http.StatusSeeOther, "/register")
	}
	reg := sess.Form

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var insertErr error
	for attempt := 0; attempt < submitMaxAttempts; attempt++ {
		insertErr = h.Store.Insert(ctx, reg)
		if !errors.Is(insertErr, repository.ErrDuplicateRoll) {
			break
		}
		// Lost the allocate/persist race: another visitor claimed this
		// number first.  Draw a replacement and move the images with it.
		newRoll, err := h.Alloc.Allocate(ctx)
		if err != nil {
			insertErr = err
			break
		}
		oldRoll := reg.RollNumber
		files, err := h.Uploads.Rekey(oldRoll, newRoll, upload.Files{
			Selfie: reg.SelfiePath, IDFront: reg.IDFrontPath, IDBack: reg.IDBackPath,
		})
		if err != nil {
			insertErr = err
			break
		}
		reg.RollNumber = newRoll
		reg.SelfiePath, reg.IDFrontPath, reg.IDBackPath = files.Selfie, files.IDFront, files.IDBack
		sess.RollNumber = newRoll
		// The stored session must follow the rekey.  Session backends that
		// serialize (Redis) share no pointers with reg, and a resubmit after
		// a later insert failure would otherwise look for the images under
		// the superseded number.
		if err := h.Sessions.Set(ctx, sid, sess); err != nil {
			insertErr = err
			break
		}
		c.Logger().Warnf("roll number %s conflicted at insert, reallocated %s", oldRoll, newRoll)
	}
	if insertErr != nil {
		// The session keeps its captured form so the visitor can retry.
		c.Logger().Errorf("persisting registration failed: %v", insertErr)
		return c.String(http.StatusInternalServerError, "saving your registration failed, please try again")
	}

	if h.Publish != nil {
		_ = h.Publish(ctx, queue.RegistrationSubmittedEvent{
			RollNumber:     reg.RollNumber,
			AgentID:        h.Cfg.AgentID,
			MembershipType: reg.MembershipType,
			FamilyName:     reg.FamilyName,
			FirstName:      reg.FirstName,
			RefID:          reg.RefID,
			SubmittedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}

	// Teardown happens here, before the redirect is written, never as a
	// deferred cleanup racing the response.
	if err := h.Sessions.Destroy(ctx, sid); err != nil {
		c.Logger().Errorf("session destroy failed: %v", err)
	}
	h.clearCookie(c)

	qs := url.Values{}
	qs.Set("roll", reg.RollNumber)
	qs.Set("first_name", reg.FirstName)
	return c.Redirect(http.StatusSeeOther, "/success?"+qs.Encode())
}

// Success renders the confirmation from the query parameters carried by
// the submit redirect.  Re-rendering it later is harmless: no server
// state is read.
func (h *RegistrationHandler) Success(c echo.Context) error {
	roll := c.QueryParam("roll")
	first := c.QueryParam("first_name")
	if roll == "" || first == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Render(http.StatusOK, "success.html", echo.Map{
		"RollNumber": roll,
		"FirstName":  first,
	})
}

// ----- helpers -----

// ensureSession returns the request's session, creating one (and setting
// the signed cookie) when the visitor is anonymous.
func (h *RegistrationHandler) ensureSession(c echo.Context) (string, session.Session, error) {
	if sess, sid, ok := middleware.CurrentSession(c); ok {
		return sid, sess, nil
	}
	sid, err := utils.NewSessionID()
	if err != nil {
		return "", session.Session{}, err
	}
	tok, err := utils.SignSessionToken(h.Cfg.SessionSecret, sid, h.Cfg.SessionTTLMin)
	if err != nil {
		return "", session.Session{}, err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   h.Cfg.SessionTTLMin * 60,
	})
	return sid, session.Session{}, nil
}

// clearCookie expires the session cookie on the browser side.
func (h *RegistrationHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// formFile returns the named multipart file header, or nil when the part
// was not submitted.
func formFile(c echo.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return fh
}
