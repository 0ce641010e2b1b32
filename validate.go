package chargeauth

import (
	"regexp"
	"strings"
	"time"
)

// Validators normalize and check record fields before they reach the store,
// and maintain the creation/update epochtime pair. Role-gated checks return
// ErrForbidden; malformed fields return a *ValidationError naming the field.

var (
	loginPattern = regexp.MustCompile(`^[a-zA-Z0-9._@-]{3,64}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{5,31}$`)
	tagPattern   = regexp.MustCompile(`^[a-zA-Z0-9]{4,32}$`)
	platePattern = regexp.MustCompile(`^[A-Z0-9-]{2,16}$`)
)

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func nowEpoch() int64 { return time.Now().Unix() }

// ValidateNewCustomer normalizes and checks a customer record for creation
// and stamps both audit epochtimes. Login is required; the caller supplies
// the password separately and never sets PasswordHash directly.
func ValidateNewCustomer(c *Customer) error {
	c.Login = trimmed(c.Login)
	c.Email = trimmed(c.Email)
	c.FirstName = trimmed(c.FirstName)
	c.LastName = trimmed(c.LastName)
	c.Phone = trimmed(c.Phone)

	if c.Login == nil || *c.Login == "" {
		return invalidField("Login", "must not be empty")
	}
	if !loginPattern.MatchString(*c.Login) {
		return invalidField("Login", "must be 3-64 letters, digits or ._@-")
	}
	if c.Email != nil && *c.Email != "" && !emailPattern.MatchString(*c.Email) {
		return invalidField("Email", "not a valid address")
	}
	if c.Phone != nil && *c.Phone != "" && !phonePattern.MatchString(*c.Phone) {
		return invalidField("Phone", "not a valid phone number")
	}

	now := nowEpoch()
	c.CreationDateEpochtime = &now
	c.UpdateDateEpochtime = &now
	return nil
}

// ValidateCustomerUpdate checks a partial customer update. Only admins may
// change an account's access rights; everyone else gets ErrForbidden for
// attempting it. The update epochtime is stamped; the creation epochtime is
// never touched.
func ValidateCustomerUpdate(role Role, c *Customer) error {
	if c.ID == 0 {
		return invalidField("ID", "must identify an existing customer")
	}
	if c.AccessRights != nil && !CanManageCustomers(role) {
		return ErrForbidden
	}

	c.Email = trimmed(c.Email)
	c.FirstName = trimmed(c.FirstName)
	c.LastName = trimmed(c.LastName)
	c.Phone = trimmed(c.Phone)

	if c.Email != nil && *c.Email != "" && !emailPattern.MatchString(*c.Email) {
		return invalidField("Email", "not a valid address")
	}
	if c.Phone != nil && *c.Phone != "" && !phonePattern.MatchString(*c.Phone) {
		return invalidField("Phone", "not a valid phone number")
	}

	now := nowEpoch()
	c.UpdateDateEpochtime = &now
	c.CreationDateEpochtime = nil
	return nil
}

// ValidateNewCar normalizes and checks a car record for creation.
func ValidateNewCar(c *Car) error {
	if c.CustomerID == nil || *c.CustomerID == 0 {
		return invalidField("CustomerID", "must reference the owning customer")
	}
	if err := normalizeCar(c); err != nil {
		return err
	}

	now := nowEpoch()
	c.CreationDateEpochtime = &now
	c.UpdateDateEpochtime = &now
	return nil
}

// ValidateCarUpdate checks a partial car update.
func ValidateCarUpdate(c *Car) error {
	if c.ID == 0 {
		return invalidField("ID", "must identify an existing car")
	}
	if err := normalizeCar(c); err != nil {
		return err
	}

	now := nowEpoch()
	c.UpdateDateEpochtime = &now
	c.CreationDateEpochtime = nil
	return nil
}

func normalizeCar(c *Car) error {
	if c.LicensePlate != nil {
		plate := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(*c.LicensePlate), " ", ""))
		if !platePattern.MatchString(plate) {
			return invalidField("LicensePlate", "must be 2-16 letters, digits or dashes")
		}
		c.LicensePlate = &plate
	}
	c.Model = trimmed(c.Model)
	if c.BatteryCapacityKWh != nil && *c.BatteryCapacityKWh <= 0 {
		return invalidField("BatteryCapacityKWh", "must be positive")
	}
	return nil
}

// ValidateNewRFID normalizes and checks an RFID record for creation. Tags
// are stored uppercase.
func ValidateNewRFID(r *RFID) error {
	if r.CustomerID == nil || *r.CustomerID == 0 {
		return invalidField("CustomerID", "must reference the owning customer")
	}
	if r.Tag == nil {
		return invalidField("Tag", "must not be empty")
	}
	tag := strings.ToUpper(strings.TrimSpace(*r.Tag))
	if !tagPattern.MatchString(tag) {
		return invalidField("Tag", "must be 4-32 letters or digits")
	}
	r.Tag = &tag

	now := nowEpoch()
	r.CreationDateEpochtime = &now
	r.UpdateDateEpochtime = &now
	return nil
}

// ValidateNewStation checks a station record for creation. Only admins may
// register stations.
func ValidateNewStation(role Role, s *Station) error {
	if !CanCreateStation(role) {
		return ErrForbidden
	}
	s.Name = trimmed(s.Name)
	if s.Name == nil || *s.Name == "" {
		return invalidField("Name", "must not be empty")
	}
	if err := checkCoordinates(s); err != nil {
		return err
	}

	now := nowEpoch()
	s.CreationDateEpochtime = &now
	s.UpdateDateEpochtime = &now
	return nil
}

// ValidateStationUpdate checks a partial station update. Admins and station
// operators may update metadata; changing the assigned tariff stays
// admin-only.
func ValidateStationUpdate(role Role, s *Station) error {
	if !CanUpdateStation(role) {
		return ErrForbidden
	}
	if s.ID == 0 {
		return invalidField("ID", "must identify an existing station")
	}
	if s.TariffID != nil && !CanManageTariffs(role) {
		return ErrForbidden
	}
	s.Name = trimmed(s.Name)
	if err := checkCoordinates(s); err != nil {
		return err
	}

	now := nowEpoch()
	s.UpdateDateEpochtime = &now
	s.CreationDateEpochtime = nil
	return nil
}

func checkCoordinates(s *Station) error {
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return invalidField("Latitude", "must be between -90 and 90")
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return invalidField("Longitude", "must be between -180 and 180")
	}
	return nil
}

// ValidateNewTariff checks a tariff record for creation. Tariff management
// is admin-only.
func ValidateNewTariff(role Role, t *Tariff) error {
	if !CanManageTariffs(role) {
		return ErrForbidden
	}
	if err := normalizeTariff(t, true); err != nil {
		return err
	}

	now := nowEpoch()
	t.CreationDateEpochtime = &now
	t.UpdateDateEpochtime = &now
	return nil
}

// ValidateTariffUpdate checks a partial tariff update.
func ValidateTariffUpdate(role Role, t *Tariff) error {
	if !CanManageTariffs(role) {
		return ErrForbidden
	}
	if t.ID == 0 {
		return invalidField("ID", "must identify an existing tariff")
	}
	if err := normalizeTariff(t, false); err != nil {
		return err
	}

	now := nowEpoch()
	t.UpdateDateEpochtime = &now
	t.CreationDateEpochtime = nil
	return nil
}

func normalizeTariff(t *Tariff, create bool) error {
	t.Name = trimmed(t.Name)
	if create && (t.Name == nil || *t.Name == "") {
		return invalidField("Name", "must not be empty")
	}
	if t.PricePerKWh != nil && *t.PricePerKWh < 0 {
		return invalidField("PricePerKWh", "must not be negative")
	}
	if t.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*t.Currency))
		if len(cur) != 3 {
			return invalidField("Currency", "must be a 3-letter code")
		}
		t.Currency = &cur
	}
	return nil
}
