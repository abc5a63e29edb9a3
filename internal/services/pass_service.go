package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skip2/go-qrcode"

	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
)

const (
	passIssuer   = "event-ticketing"
	passGrace    = 24 * time.Hour
	passQRSize   = 256
	passAudience = "ticket-pass"
)

var (
	ErrNoTickets   = errors.New("holder has no tickets for this event")
	ErrInvalidPass = errors.New("invalid ticket pass")
)

// PassClaims are the signed contents of a ticket pass
type PassClaims struct {
	EventID uint64 `json:"event_id"`
	Holder  string `json:"holder"`
	Count   uint64 `json:"count"`
	jwt.RegisteredClaims
}

// Pass is an issued ticket pass: the signed token and its QR rendering
type Pass struct {
	Token string
	PNG   []byte
}

// PassService issues and checks scannable ticket passes. A pass only proves
// a holding at issue time; Verify re-checks the live ledger.
type PassService struct {
	secret []byte
	engine *ticketing.Engine
}

func NewPassService(secret string, engine *ticketing.Engine) *PassService {
	return &PassService{secret: []byte(secret), engine: engine}
}

// Issue signs a pass for holder's tickets to event id. Passes expire a day after the event.
func (s *PassService) Issue(id uint64, holder ticketing.Address) (*Pass, error) {
	ev, err := s.engine.GetEventDetails(id)
	if err != nil {
		return nil, err
	}
	if ev.IsCanceled {
		return nil, ticketing.ErrEventCanceled
	}
	count := s.engine.GetTicketsOwned(id, holder)
	if count == 0 {
		return nil, ErrNoTickets
	}

	now := s.engine.Now()
	claims := PassClaims{
		EventID: id,
		Holder:  holder.String(),
		Count:   count,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    passIssuer,
			Audience:  jwt.ClaimStrings{passAudience},
			Subject:   strconv.FormatUint(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ev.EventDate.Add(passGrace)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign pass: %w", err)
	}

	png, err := qrcode.Encode(token, qrcode.Medium, passQRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render pass: %w", err)
	}

	return &Pass{Token: token, PNG: png}, nil
}

// Verify checks a scanned pass against the current ledger state
func (s *PassService) Verify(token string) (*models.PassVerificationResponse, error) {
	claims := &PassClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(passIssuer),
		jwt.WithAudience(passAudience),
		jwt.WithTimeFunc(s.engine.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidPass
	}

	ev, err := s.engine.GetEventDetails(claims.EventID)
	if err != nil {
		return nil, err
	}
	if ev.IsCanceled {
		return nil, ticketing.ErrEventCanceled
	}
	holder := ticketing.Address(claims.Holder)
	count := s.engine.GetTicketsOwned(ev.ID, holder)
	if count == 0 {
		return nil, ErrNoTickets
	}

	resp := &models.PassVerificationResponse{
		EventID:   ev.ID,
		EventName: ev.Name,
		Holder:    holder.String(),
		Tickets:   count,
	}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Time
	}
	return resp, nil
}
