package localstore

import (
	"context"
	"database/sql"

	"github.com/casos-paranormales/casos-cli/lib"
)

const commentSelect = `SELECT cm.id, cm.case_id, cm.text, cm.user_id, cm.likes, cm.dislikes, cm.created_at,
	u.username, u.first_name, u.last_name
FROM comments cm
LEFT JOIN users u ON u.id = cm.user_id`

func scanComment(row scanner) (lib.Comment, error) {
	var (
		c         lib.Comment
		dislikes  sql.NullInt64
		createdAt string
		username  sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
	)
	err := row.Scan(&c.Id, &c.CaseId, &c.Text, &c.UserId, &c.Likes, &dislikes, &createdAt,
		&username, &firstName, &lastName)
	if err != nil {
		return lib.Comment{}, err
	}
	if dislikes.Valid {
		n := int(dislikes.Int64)
		c.Dislikes = &n
	}
	c.CreatedAt = parseTime(createdAt)
	if username.Valid {
		c.Author = &lib.User{Id: c.UserId, Username: username.String, FirstName: firstName.String, LastName: lastName.String}
	}
	return c, nil
}

// ListComments 最新的在前
func (s *Store) ListComments(ctx context.Context, caseId int64) ([]lib.Comment, error) {
	rows, err := s.db.QueryContext(ctx, commentSelect+" WHERE cm.case_id = ? ORDER BY cm.created_at DESC, cm.id DESC", caseId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]lib.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *Store) getComment(ctx context.Context, id int64) (*lib.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+" WHERE cm.id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, input lib.CommentInput) (*lib.Comment, error) {
	var dislikes interface{}
	if input.Dislikes != nil {
		dislikes = *input.Dislikes
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO comments(case_id, text, user_id, likes, dislikes, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		input.CaseId, input.Text, input.UserId, input.Likes, dislikes, s.timestamp())
	if err != nil {
		return nil, platformError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getComment(ctx, id)
}

func (s *Store) UpdateCommentCounters(ctx context.Context, id int64, likes int, dislikes *int) (*lib.Comment, error) {
	var d interface{}
	if dislikes != nil {
		d = *dislikes
	}
	res, err := s.db.ExecContext(ctx, "UPDATE comments SET likes = ?, dislikes = COALESCE(?, dislikes) WHERE id = ?", likes, d, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, lib.ErrNotFound
	}
	return s.getComment(ctx, id)
}

// DeleteComment 与托管平台一致，不存在的 id 不报错
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	return err
}
