package chargeauth

import "github.com/gridwatt/chargeauth/store"

// Domain records are attribute-mapped rows: each business field is a pointer
// so nil can signal "not supplied" in a partial update. FieldValues entries
// align 1:1 with the schema fields; validators, not callers, maintain the
// epochtime audit pair.

// Customer is a registered account.
type Customer struct {
	ID                    int64
	Login                 *string
	PasswordHash          *string
	AccessRights          *string
	Email                 *string
	FirstName             *string
	LastName              *string
	Phone                 *string
	Deleted               bool
	CreationDateEpochtime *int64
	UpdateDateEpochtime   *int64
}

var customerSchema = store.MustSchema("customers",
	store.Field{Name: "ID", Column: "id", ID: true, Key: true},
	store.Field{Name: "Login", Column: "login", MaxLen: 64, Immutable: true},
	store.Field{Name: "PasswordHash", Column: "password_hash", MaxLen: 64},
	store.Field{Name: "AccessRights", Column: "access_rights", MaxLen: 32},
	store.Field{Name: "Email", Column: "email", MaxLen: 128},
	store.Field{Name: "FirstName", Column: "first_name", MaxLen: 64},
	store.Field{Name: "LastName", Column: "last_name", MaxLen: 64},
	store.Field{Name: "Phone", Column: "phone", MaxLen: 32},
	store.Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
	store.Field{Name: "CreationDateEpochtime", Column: "creation_date_epochtime", Immutable: true},
	store.Field{Name: "UpdateDateEpochtime", Column: "update_date_epochtime"},
)

func (c *Customer) Schema() *store.Schema { return customerSchema }

func (c *Customer) FieldValues() []any {
	return []any{c.ID, c.Login, c.PasswordHash, c.AccessRights, c.Email,
		c.FirstName, c.LastName, c.Phone, c.Deleted,
		c.CreationDateEpochtime, c.UpdateDateEpochtime}
}

// Car is a customer's vehicle.
type Car struct {
	ID                    int64
	CustomerID            *int64
	LicensePlate          *string
	Model                 *string
	BatteryCapacityKWh    *float64
	Deleted               bool
	CreationDateEpochtime *int64
	UpdateDateEpochtime   *int64
}

var carSchema = store.MustSchema("cars",
	store.Field{Name: "ID", Column: "id", ID: true, Key: true},
	store.Field{Name: "CustomerID", Column: "customer_id", Immutable: true},
	store.Field{Name: "LicensePlate", Column: "license_plate", MaxLen: 16},
	store.Field{Name: "Model", Column: "model", MaxLen: 64},
	store.Field{Name: "BatteryCapacityKWh", Column: "battery_capacity_kwh"},
	store.Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
	store.Field{Name: "CreationDateEpochtime", Column: "creation_date_epochtime", Immutable: true},
	store.Field{Name: "UpdateDateEpochtime", Column: "update_date_epochtime"},
)

func (c *Car) Schema() *store.Schema { return carSchema }

func (c *Car) FieldValues() []any {
	return []any{c.ID, c.CustomerID, c.LicensePlate, c.Model,
		c.BatteryCapacityKWh, c.Deleted,
		c.CreationDateEpochtime, c.UpdateDateEpochtime}
}

// RFID is a charge card bound to a customer; possession of the tag is a
// login credential.
type RFID struct {
	ID                    int64
	CustomerID            *int64
	Tag                   *string
	Deleted               bool
	CreationDateEpochtime *int64
	UpdateDateEpochtime   *int64
}

var rfidSchema = store.MustSchema("rfids",
	store.Field{Name: "ID", Column: "id", ID: true, Key: true},
	store.Field{Name: "CustomerID", Column: "customer_id", Immutable: true},
	store.Field{Name: "Tag", Column: "tag", MaxLen: 32, Immutable: true},
	store.Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
	store.Field{Name: "CreationDateEpochtime", Column: "creation_date_epochtime", Immutable: true},
	store.Field{Name: "UpdateDateEpochtime", Column: "update_date_epochtime"},
)

func (r *RFID) Schema() *store.Schema { return rfidSchema }

func (r *RFID) FieldValues() []any {
	return []any{r.ID, r.CustomerID, r.Tag, r.Deleted,
		r.CreationDateEpochtime, r.UpdateDateEpochtime}
}

// Station is a charge point.
type Station struct {
	ID                    int64
	Name                  *string
	Latitude              *float64
	Longitude             *float64
	OperatorID            *int64
	TariffID              *int64
	Deleted               bool
	CreationDateEpochtime *int64
	UpdateDateEpochtime   *int64
}

var stationSchema = store.MustSchema("stations",
	store.Field{Name: "ID", Column: "id", ID: true, Key: true},
	store.Field{Name: "Name", Column: "name", MaxLen: 64},
	store.Field{Name: "Latitude", Column: "latitude"},
	store.Field{Name: "Longitude", Column: "longitude"},
	store.Field{Name: "OperatorID", Column: "operator_id"},
	store.Field{Name: "TariffID", Column: "tariff_id"},
	store.Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
	store.Field{Name: "CreationDateEpochtime", Column: "creation_date_epochtime", Immutable: true},
	store.Field{Name: "UpdateDateEpochtime", Column: "update_date_epochtime"},
)

func (s *Station) Schema() *store.Schema { return stationSchema }

func (s *Station) FieldValues() []any {
	return []any{s.ID, s.Name, s.Latitude, s.Longitude, s.OperatorID,
		s.TariffID, s.Deleted, s.CreationDateEpochtime, s.UpdateDateEpochtime}
}

// Tariff is a pricing scheme applied to stations.
type Tariff struct {
	ID                    int64
	Name                  *string
	PricePerKWh           *float64
	Currency              *string
	Deleted               bool
	CreationDateEpochtime *int64
	UpdateDateEpochtime   *int64
}

var tariffSchema = store.MustSchema("tariffs",
	store.Field{Name: "ID", Column: "id", ID: true, Key: true},
	store.Field{Name: "Name", Column: "name", MaxLen: 64},
	store.Field{Name: "PricePerKWh", Column: "price_per_kwh"},
	store.Field{Name: "Currency", Column: "currency", MaxLen: 8},
	store.Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
	store.Field{Name: "CreationDateEpochtime", Column: "creation_date_epochtime", Immutable: true},
	store.Field{Name: "UpdateDateEpochtime", Column: "update_date_epochtime"},
)

func (t *Tariff) Schema() *store.Schema { return tariffSchema }

func (t *Tariff) FieldValues() []any {
	return []any{t.ID, t.Name, t.PricePerKWh, t.Currency, t.Deleted,
		t.CreationDateEpochtime, t.UpdateDateEpochtime}
}
