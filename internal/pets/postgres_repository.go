package pets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxIface is the subset of pgxpool.Pool the repository uses. pgxmock
// implements it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores pets and their record history in Postgres.
type PostgresRepository struct {
	db PgxIface
}

// NewPostgresRepository initializes a repository backed by a pgx pool.
func NewPostgresRepository(db PgxIface) *PostgresRepository {
	if db == nil {
		panic("pets: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const petColumns = `id, name, species, breed, age, weight, owner_name, owner_contact,
		owner_email, last_visit, profile_img, qr_code, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, pet *Pet) error {
	query := `
		INSERT INTO pets (id, name, species, breed, age, weight, owner_name,
			owner_contact, owner_email, last_visit, profile_img, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.Exec(ctx, query,
		pet.ID, pet.Name, pet.Species, pet.Breed, pet.AgeYears, pet.WeightLbs,
		pet.OwnerName, pet.OwnerContact, pet.OwnerEmail, pet.LastVisit,
		pet.ProfileImage, pet.QRCode,
	); err != nil {
		return fmt.Errorf("pets: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, pet *Pet) error {
	query := `
		UPDATE pets
		SET name = $2, species = $3, breed = $4, age = $5, weight = $6,
			owner_name = $7, owner_contact = $8, owner_email = $9,
			last_visit = $10, profile_img = $11, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		pet.ID, pet.Name, pet.Species, pet.Breed, pet.AgeYears, pet.WeightLbs,
		pet.OwnerName, pet.OwnerContact, pet.OwnerEmail, pet.LastVisit,
		pet.ProfileImage,
	)
	if err != nil {
		return fmt.Errorf("pets: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPetNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	return r.scanPet(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) GetByQRCode(ctx context.Context, code string) (*Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE qr_code = $1`
	return r.scanPet(r.db.QueryRow(ctx, query, code))
}

func (r *PostgresRepository) scanPet(row pgx.Row) (*Pet, error) {
	var pet Pet
	if err := row.Scan(
		&pet.ID, &pet.Name, &pet.Species, &pet.Breed, &pet.AgeYears, &pet.WeightLbs,
		&pet.OwnerName, &pet.OwnerContact, &pet.OwnerEmail, &pet.LastVisit,
		&pet.ProfileImage, &pet.QRCode, &pet.CreatedAt, &pet.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("pets: select failed: %w", err)
	}
	return &pet, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pets: list failed: %w", err)
	}
	defer rows.Close()
	return r.collectPets(rows)
}

func (r *PostgresRepository) ListByOwnerEmail(ctx context.Context, email string) ([]*Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE owner_email = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("pets: list by owner failed: %w", err)
	}
	defer rows.Close()
	return r.collectPets(rows)
}

func (r *PostgresRepository) collectPets(rows pgx.Rows) ([]*Pet, error) {
	var out []*Pet
	for rows.Next() {
		var pet Pet
		if err := rows.Scan(
			&pet.ID, &pet.Name, &pet.Species, &pet.Breed, &pet.AgeYears, &pet.WeightLbs,
			&pet.OwnerName, &pet.OwnerContact, &pet.OwnerEmail, &pet.LastVisit,
			&pet.ProfileImage, &pet.QRCode, &pet.CreatedAt, &pet.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pets: scan failed: %w", err)
		}
		out = append(out, &pet)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM pets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("pets: count failed: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) AddMedicalRecord(ctx context.Context, rec *MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, pet_id, date, description, treatment,
			medication, veterinarian, follow_up, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := r.db.Exec(ctx, query,
		rec.ID, rec.PetID, rec.Date, rec.Description, rec.Treatment,
		rec.Medication, rec.Veterinarian, rec.FollowUp, rec.ImageKey,
	); err != nil {
		return fmt.Errorf("pets: insert medical record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListMedicalRecords(ctx context.Context, petID string) ([]*MedicalRecord, error) {
	query := `
		SELECT id, pet_id, date, description, treatment, medication,
			veterinarian, follow_up, image_key, created_at
		FROM medical_records
		WHERE pet_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, petID)
	if err != nil {
		return nil, fmt.Errorf("pets: list medical records: %w", err)
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		var rec MedicalRecord
		if err := rows.Scan(
			&rec.ID, &rec.PetID, &rec.Date, &rec.Description, &rec.Treatment,
			&rec.Medication, &rec.Veterinarian, &rec.FollowUp, &rec.ImageKey,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pets: scan medical record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddVaccineRecord(ctx context.Context, rec *VaccineRecord) error {
	query := `
		INSERT INTO vaccine_records (id, pet_id, date, vaccine_name, manufacturer,
			lot_number, expiration_date, veterinarian, next_due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := r.db.Exec(ctx, query,
		rec.ID, rec.PetID, rec.Date, rec.VaccineName, rec.Manufacturer,
		rec.LotNumber, rec.Expiration, rec.Veterinarian, rec.NextDue,
	); err != nil {
		return fmt.Errorf("pets: insert vaccine record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListVaccineRecords(ctx context.Context, petID string) ([]*VaccineRecord, error) {
	query := `
		SELECT id, pet_id, date, vaccine_name, manufacturer, lot_number,
			expiration_date, veterinarian, next_due_date, created_at
		FROM vaccine_records
		WHERE pet_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, petID)
	if err != nil {
		return nil, fmt.Errorf("pets: list vaccine records: %w", err)
	}
	defer rows.Close()

	var out []*VaccineRecord
	for rows.Next() {
		var rec VaccineRecord
		if err := rows.Scan(
			&rec.ID, &rec.PetID, &rec.Date, &rec.VaccineName, &rec.Manufacturer,
			&rec.LotNumber, &rec.Expiration, &rec.Veterinarian, &rec.NextDue,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pets: scan vaccine record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddNote(ctx context.Context, note *Note) error {
	query := `
		INSERT INTO notes (id, pet_id, date, title, content, author, private)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.Exec(ctx, query,
		note.ID, note.PetID, note.Date, note.Title, note.Content,
		note.Author, note.Private,
	); err != nil {
		return fmt.Errorf("pets: insert note: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListNotes(ctx context.Context, petID string) ([]*Note, error) {
	query := `
		SELECT id, pet_id, date, title, content, author, private, created_at
		FROM notes
		WHERE pet_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, petID)
	if err != nil {
		return nil, fmt.Errorf("pets: list notes: %w", err)
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		var note Note
		if err := rows.Scan(
			&note.ID, &note.PetID, &note.Date, &note.Title, &note.Content,
			&note.Author, &note.Private, &note.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pets: scan note: %w", err)
		}
		out = append(out, &note)
	}
	return out, rows.Err()
}
