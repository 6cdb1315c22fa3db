package localstore

import (
	"context"

	"github.com/casos-paranormales/casos-cli/lib"
)

const userCols = "id, username, email, first_name, last_name, birthday"

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*lib.UserRecord, error) {
	var r lib.UserRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userCols+", password FROM users WHERE username = ?", username,
	).Scan(&r.Id, &r.Username, &r.Email, &r.FirstName, &r.LastName, &r.Birthday, &r.PasswordHash)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) CreateUser(ctx context.Context, user lib.NewUser) (*lib.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users(username, password, email, first_name, last_name, birthday) VALUES(?, ?, ?, ?, ?, ?)",
		user.Username, user.PasswordHash, user.Email, user.FirstName, user.LastName, user.Birthday)
	if err != nil {
		return nil, platformError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*lib.User, error) {
	var u lib.User
	err := s.db.QueryRowContext(ctx, "SELECT "+userCols+" FROM users WHERE id = ?", id).
		Scan(&u.Id, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Birthday)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindLocation 国家精确匹配，地址不区分大小写的子串匹配
func (s *Store) FindLocation(ctx context.Context, country, address string) (*lib.Location, error) {
	var l lib.Location
	err := s.db.QueryRowContext(ctx,
		`SELECT id, country, region, address FROM locations
		 WHERE country = ? AND lower(address) LIKE ? ESCAPE '\'
		 ORDER BY id LIMIT 1`,
		country, likeArg(address),
	).Scan(&l.Id, &l.Country, &l.Region, &l.Address)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (s *Store) CreateLocation(ctx context.Context, input lib.LocationInput) (*lib.Location, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO locations(country, region, address) VALUES(?, ?, ?)",
		input.Country, input.Region, input.Address)
	if err != nil {
		return nil, platformError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &lib.Location{Id: id, Country: input.Country, Region: input.Region, Address: input.Address}, nil
}

func (s *Store) ListCaseTypes(ctx context.Context) ([]lib.CaseType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM case_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]lib.CaseType, 0)
	for rows.Next() {
		var t lib.CaseType
		if err := rows.Scan(&t.Id, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
