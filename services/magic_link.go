package services

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"time"

	"top-doggo/models"
	"top-doggo/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue failure classes. Both surface as inline form errors, never 500s.
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrSendFailed   = errors.New("could not send email")
)

// RedeemKind is the outcome of a redemption attempt.
type RedeemKind int

const (
	// RedeemExpired covers missing, expired and already-used tokens.
	RedeemExpired RedeemKind = iota
	// RedeemAlreadyLoggedIn refuses redemption when the session already has
	// a different verified email.
	RedeemAlreadyLoggedIn
	// RedeemSameEmail is the idempotent re-click by an already-logged-in user.
	RedeemSameEmail
	// RedeemLogin moved the session onto an existing account.
	RedeemLogin
	// RedeemSignup upgraded the current guest account in place.
	RedeemSignup
)

// RedeemResult carries the outcome plus, for logins, the fresh session token
// the caller must set as the response cookie.
type RedeemResult struct {
	Kind         RedeemKind
	SessionToken string
	Email        string
	UserID       string
}

// MagicLinkService implements the passwordless auth flow: token issuance,
// expiry-bounded single-use redemption, and the login/signup split.
type MagicLinkService struct {
	DB       *gorm.DB
	Mailer   Mailer
	Audit    *AuditService
	Identity *IdentityService
	BaseURL  string
}

func NewMagicLinkService(db *gorm.DB, mailer Mailer, audit *AuditService, identity *IdentityService, baseURL string) *MagicLinkService {
	return &MagicLinkService{DB: db, Mailer: mailer, Audit: audit, Identity: identity, BaseURL: baseURL}
}

// Issue validates the address, persists a token and emails the redemption
// link. Multiple outstanding tokens for the same email may coexist.
func (s *MagicLinkService) Issue(email, senderID string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	token := models.EmailToken{
		Token:    uuid.NewString(),
		Email:    email,
		SenderID: senderID,
	}
	if err := s.DB.Create(&token).Error; err != nil {
		return err
	}

	link := fmt.Sprintf("%s/login?token=%s", s.BaseURL, token.Token)
	body := fmt.Sprintf(
		"<h1>Magic Link for Top Doggo</h1><h3>Follow this link to log in to the platform:</h3><a href=%q>Log In</a>",
		link,
	)
	if err := s.Mailer.Send(email, "Top Doggo - Your Magic Link", body); err != nil {
		log.Printf("[MAGIC_LINK] send to %s failed: %v", email, err)
		return ErrSendFailed
	}
	return nil
}

// Redeem runs the token state machine for the current session. It never
// mutates the session itself; login outcomes hand back a new token for the
// caller to set.
func (s *MagicLinkService) Redeem(rawToken, currentUserID string, currentEmail *string) (RedeemResult, error) {
	var token models.EmailToken
	err := s.DB.First(&token, "token = ?", rawToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RedeemResult{Kind: RedeemExpired}, nil
	}
	if err != nil {
		return RedeemResult{}, err
	}
	if token.Expired(time.Now()) {
		return RedeemResult{Kind: RedeemExpired}, nil
	}

	if currentEmail != nil {
		if *currentEmail != token.Email {
			return RedeemResult{Kind: RedeemAlreadyLoggedIn}, nil
		}
		return RedeemResult{Kind: RedeemSameEmail}, nil
	}

	// Single use: a consumed token is as dead as an expired one.
	if token.Used {
		return RedeemResult{Kind: RedeemExpired}, nil
	}

	var owner models.User
	err = s.DB.First(&owner, "email = ?", token.Email).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return RedeemResult{}, err
	}

	if err == nil {
		// Log in: the session moves to the account that owns the email.
		sessionToken, err := s.Identity.MintSession(owner.ID)
		if err != nil {
			return RedeemResult{}, err
		}
		if err := s.consume(&token, owner.ID); err != nil {
			return RedeemResult{}, err
		}
		return RedeemResult{Kind: RedeemLogin, SessionToken: sessionToken, Email: token.Email, UserID: owner.ID}, nil
	}

	// Sign up: promote the guest account in place, with the one-time bonus.
	err = s.DB.Model(&models.User{}).Where("id = ?", currentUserID).
		Updates(map[string]interface{}{
			"email":    token.Email,
			"total_xp": gorm.Expr("total_xp + ?", SignupBonusXP),
		}).Error
	if err != nil {
		return RedeemResult{}, err
	}
	if err := s.consume(&token, currentUserID); err != nil {
		return RedeemResult{}, err
	}
	return RedeemResult{Kind: RedeemSignup, Email: token.Email, UserID: currentUserID}, nil
}

// consume marks the token used and stamps which account owns the email now,
// which is what the session middleware's convergence check looks for.
func (s *MagicLinkService) consume(token *models.EmailToken, emailHaverID string) error {
	now := time.Now()
	return s.DB.Model(token).Updates(map[string]interface{}{
		"used":           true,
		"used_at":        now,
		"email_haver_id": emailHaverID,
	}).Error
}

// --- Fiber handlers ---

// SendMagicLink handles the email submission form.
func (s *MagicLinkService) SendMagicLink(c *fiber.Ctx) error {
	email := c.FormValue("email_address")
	userID := c.Locals("user_id").(string)

	if err := s.Issue(email, userID); err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"field": "email_address", "value": email, "error": "Invalid Email",
			})
		case errors.Is(err, ErrSendFailed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"field": "email_address", "value": email, "error": "Couldn't send the email, try again in a bit",
			})
		default:
			log.Printf("DB Error issuing magic link: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		}
	}

	s.Audit.Record(models.ActionSendMagicLink, userID, c.Locals("client_ip").(string), email)

	return c.JSON(fiber.Map{"message": "Email sent. Check your inbox!"})
}

// Login handles magic-link redemption. It always redirects.
func (s *MagicLinkService) Login(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	userEmail, _ := c.Locals("user_email").(*string)
	clientIP := c.Locals("client_ip").(string)

	result, err := s.Redeem(c.Query("token"), userID, userEmail)
	if err != nil {
		log.Printf("DB Error redeeming magic link: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}

	switch result.Kind {
	case RedeemAlreadyLoggedIn:
		return c.Redirect("/sorry?reason=already_logged_in", fiber.StatusTemporaryRedirect)
	case RedeemSameEmail:
		return c.Redirect("/me", fiber.StatusTemporaryRedirect)
	case RedeemLogin:
		c.Cookie(utils.NewSessionCookie(result.SessionToken))
		s.Audit.Record(models.ActionLogIn, result.UserID, clientIP, fmt.Sprintf("%s %s", result.Email, userID))
		return c.Redirect("/me", fiber.StatusTemporaryRedirect)
	case RedeemSignup:
		s.Audit.Record(models.ActionSignUp, result.UserID, clientIP, result.Email)
		return c.Redirect("/me?new_user=true", fiber.StatusTemporaryRedirect)
	default:
		return c.Redirect("/sorry?reason=expired_or_does_not_exist", fiber.StatusTemporaryRedirect)
	}
}

// Sorry surfaces the redemption error reasons as plain data.
func (s *MagicLinkService) Sorry(c *fiber.Ctx) error {
	var message string
	switch c.Query("reason") {
	case "already_logged_in":
		email := "another email"
		if e, ok := c.Locals("user_email").(*string); ok && e != nil {
			email = *e
		}
		message = fmt.Sprintf("You're already logged in with %s", email)
	default:
		message = "That token is expired or doesn't exist."
	}
	return c.JSON(fiber.Map{"message": message})
}
