package localstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
)

const caseSelect = `SELECT c.id, c.user_id, c.case_type_id, c.case_name, c.description, c.time_hour, c.location_id,
	t.name, l.country, l.region, l.address, u.username, u.first_name, u.last_name
FROM cases c
JOIN case_types t ON t.id = c.case_type_id
JOIN locations l ON l.id = c.location_id
JOIN users u ON u.id = c.user_id`

var sortColumns = map[string]string{
	meta.SortByTimeHour: "c.time_hour",
	meta.SortByCaseName: "c.case_name",
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(row scanner) (lib.Case, error) {
	var (
		c        lib.Case
		timeHour string
		t        lib.CaseType
		l        lib.Location
		u        lib.User
	)
	err := row.Scan(&c.Id, &c.UserId, &c.CaseTypeId, &c.CaseName, &c.Description, &timeHour, &c.LocationId,
		&t.Name, &l.Country, &l.Region, &l.Address, &u.Username, &u.FirstName, &u.LastName)
	if err != nil {
		return lib.Case{}, err
	}
	c.TimeHour = parseTime(timeHour)
	t.Id, l.Id, u.Id = c.CaseTypeId, c.LocationId, c.UserId
	c.CaseType, c.Location, c.Owner = &t, &l, &u
	return c, nil
}

func (s *Store) CreateCase(ctx context.Context, input lib.CaseInput) (*lib.Case, error) {
	timeHour := s.timestamp()
	if !input.TimeHour.IsZero() {
		timeHour = input.TimeHour.UTC().Format(timeLayout)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cases(user_id, case_type_id, case_name, description, time_hour, location_id)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		input.UserId, input.CaseTypeId, input.CaseName, input.Description, timeHour, input.LocationId)
	if err != nil {
		return nil, platformError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &lib.Case{
		Id:          id,
		UserId:      input.UserId,
		CaseTypeId:  input.CaseTypeId,
		CaseName:    input.CaseName,
		Description: input.Description,
		TimeHour:    parseTime(timeHour),
		LocationId:  input.LocationId,
	}, nil
}

// QueryCases 过滤、排序、分页，并返回精确总数
func (s *Store) QueryCases(ctx context.Context, query lib.CaseQuery) (lib.CasePage, error) {
	query = lib.NormalizeCaseQuery(query)
	col, ok := sortColumns[query.SortBy]
	if !ok {
		return lib.CasePage{}, lib.NewValidationError(fmt.Sprintf("unsupported sort field: %s", query.SortBy))
	}
	dir := "DESC"
	if query.SortOrder == meta.SortOrderAsc {
		dir = "ASC"
	}

	var (
		where []string
		args  []interface{}
	)
	if query.CaseTypeId > 0 {
		where = append(where, "c.case_type_id = ?")
		args = append(args, query.CaseTypeId)
	}
	if query.OwnerId > 0 {
		where = append(where, "c.user_id = ?")
		args = append(args, query.OwnerId)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		where = append(where, `(lower(c.case_name) LIKE ? ESCAPE '\' OR lower(c.description) LIKE ? ESCAPE '\')`)
		args = append(args, likeArg(search), likeArg(search))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM cases c" + clause
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return lib.CasePage{}, fmt.Errorf("count cases: %w", err)
	}

	listSQL := fmt.Sprintf("%s%s ORDER BY %s %s, c.id %s LIMIT ? OFFSET ?", caseSelect, clause, col, dir, dir)
	rows, err := s.db.QueryContext(ctx, listSQL, append(args, query.Limit, (query.Page-1)*query.Limit)...)
	if err != nil {
		return lib.CasePage{}, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	cases := make([]lib.Case, 0, query.Limit)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return lib.CasePage{}, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return lib.CasePage{}, err
	}
	rows.Close()

	for i := range cases {
		if cases[i].Files, err = s.listFiles(ctx, cases[i].Id); err != nil {
			return lib.CasePage{}, err
		}
	}
	return lib.NewCasePage(cases, total, query.Page, query.Limit), nil
}

func (s *Store) GetCase(ctx context.Context, id int64) (*lib.Case, error) {
	c, err := scanCase(s.db.QueryRowContext(ctx, caseSelect+" WHERE c.id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	if c.Files, err = s.listFiles(ctx, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) listFiles(ctx context.Context, caseId int64) ([]lib.MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, case_id, url, type FROM files WHERE case_id = ? ORDER BY id", caseId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	files := make([]lib.MediaFile, 0)
	for rows.Next() {
		var f lib.MediaFile
		if err := rows.Scan(&f.Id, &f.CaseId, &f.Url, &f.Type); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CreateFiles 一次事务写入全部文件记录
func (s *Store) CreateFiles(ctx context.Context, files []lib.FileInput) error {
	if len(files) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, f := range files {
		if _, err := tx.ExecContext(ctx, "INSERT INTO files(case_id, url, type) VALUES(?, ?, ?)", f.CaseId, f.Url, f.Type); err != nil {
			return platformError(err)
		}
	}
	return tx.Commit()
}
