package rider

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrIdentityIsNotConstructed is returned when a zero-value Identity is used.
var ErrIdentityIsNotConstructed = errors.New("Identity must be created via NewIdentity or IdentityFromFingerprint")

// Signals are the client attributes a rider device presents on every request.
type Signals struct {
	ClientIP       string
	UserAgent      string
	AcceptLanguage string
	// DeviceID is an optional client-generated installation id. When present it
	// dominates the fingerprint so a rider keeps the session across networks.
	DeviceID string
}

// Identity is the value object that keys a rider session without an account.
// It is derived once from request Signals and then passed by value.
type Identity struct {
	fingerprint string
	guard       guard.ConstructorGuard
}

// NewIdentity fingerprints the given signals with SHA-256.
// At least a device id or a client IP must be present.
//
// Example:
//
//	id, err := rider.NewIdentity(rider.Signals{
//	    ClientIP:  "102.89.1.7",
//	    UserAgent: "RiderApp/2.1 (Android 14)",
//	})
func NewIdentity(s Signals) (Identity, error) {
	deviceID := normalize(s.DeviceID)
	ip := normalize(s.ClientIP)
	if deviceID == "" && ip == "" {
		return Identity{}, errs.NewValueIsRequiredErrorWithCause("identity",
			errors.New("client ip or device id must be provided"))
	}

	var material string
	if deviceID != "" {
		material = "device|" + deviceID
	} else {
		material = strings.Join([]string{"net", ip, normalize(s.UserAgent), normalize(s.AcceptLanguage)}, "|")
	}

	sum := sha256.Sum256([]byte(material))
	return Identity{
		fingerprint: hex.EncodeToString(sum[:]),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// IdentityFromFingerprint restores an Identity from its persisted fingerprint.
func IdentityFromFingerprint(fingerprint string) (Identity, error) {
	if len(fingerprint) != sha256.Size*2 {
		return Identity{}, errs.NewValueIsInvalidErrorWithCause("fingerprint",
			fmt.Errorf("expected %d hex characters, got %d", sha256.Size*2, len(fingerprint)))
	}
	if _, err := hex.DecodeString(fingerprint); err != nil {
		return Identity{}, errs.NewValueIsInvalidErrorWithCause("fingerprint", err)
	}

	return Identity{
		fingerprint: strings.ToLower(fingerprint),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (i Identity) Validate() error {
	return i.guard.Validate(ErrIdentityIsNotConstructed)
}

// Fingerprint returns the hex encoded SHA-256 digest.
func (i Identity) Fingerprint() string {
	return i.fingerprint
}

// SessionID derives the rider session id from the fingerprint.
// The same device always maps to the same id.
func (i Identity) SessionID() kernel.UUID {
	return kernel.UUIDFromName(i.fingerprint)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
