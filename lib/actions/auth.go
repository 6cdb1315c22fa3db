package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/session"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"golang.org/x/crypto/bcrypt"
)

var registerFields = []string{
	validate.FieldFirstName,
	validate.FieldLastName,
	validate.FieldEmail,
	validate.FieldBirthday,
	validate.FieldUsername,
	validate.FieldPassword,
	validate.FieldConfirmPassword,
}

// ExecuteLogin 执行登录操作
// 校验用户名与密码，成功后写入本地会话
func ExecuteLogin(ctx context.Context, p lib.Platform, store *session.Store, username, password string) LoginResult {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{
			Error: lib.WithStep("iniciar sesión", lib.NewAuthError(meta.MsgInvalidCredentials, nil)),
		}
	}

	// 1. 查询用户
	record, err := p.FindUserByUsername(ctx, username)
	if errors.Is(err, lib.ErrNotFound) {
		return LoginResult{
			Error: lib.WithStep("iniciar sesión", lib.NewAuthError(meta.MsgInvalidCredentials, nil)),
		}
	}
	if err != nil {
		return LoginResult{Error: lib.WithStep("buscar usuario", err)}
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		logs.Debugf("password mismatch for %s: %v\n", username, err)
		return LoginResult{
			Error: lib.WithStep("iniciar sesión", lib.NewAuthError(meta.MsgInvalidCredentials, err)),
		}
	}

	// 3. 保存会话
	user := record.User
	if err := store.Login(user); err != nil {
		return LoginResult{Error: lib.WithStep("guardar sesión", err)}
	}
	return LoginResult{Success: true, User: &user}
}

// ExecuteRegister 执行注册操作，成功后直接登录
func ExecuteRegister(ctx context.Context, p lib.Platform, store *session.Store, in RegisterInput) RegisterResult {
	form := in.form()
	if errs := validate.Fields(registerFields, form); len(errs) > 0 {
		return RegisterResult{
			FieldErrors: errs,
			Error:       lib.WithStep("validación", lib.NewValidationError(firstFieldError(registerFields, errs))),
		}
	}
	username := strings.TrimSpace(in.Username)

	_, err := p.FindUserByUsername(ctx, username)
	switch {
	case err == nil:
		return RegisterResult{
			FieldErrors: map[string]string{validate.FieldUsername: meta.MsgUsernameTaken},
			Error:       lib.WithStep("registro", lib.NewAuthError(meta.MsgUsernameTaken, nil)),
		}
	case !errors.Is(err, lib.ErrNotFound):
		return RegisterResult{Error: lib.WithStep("buscar usuario", err)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), meta.BcryptCost)
	if err != nil {
		return RegisterResult{Error: lib.WithStep("registro", err)}
	}

	user, err := p.CreateUser(ctx, lib.NewUser{
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Birthday:     strings.TrimSpace(in.Birthday),
	})
	if err != nil {
		// 并发注册同名用户时由唯一约束兜底
		if lib.IsCode(err, meta.CodeUniqueViolation) {
			return RegisterResult{
				FieldErrors: map[string]string{validate.FieldUsername: meta.MsgUsernameTaken},
				Error:       lib.WithStep("registro", lib.NewAuthError(meta.MsgUsernameTaken, err)),
			}
		}
		return RegisterResult{Error: lib.WithStep("crear usuario", err)}
	}

	if err := store.Login(*user); err != nil {
		return RegisterResult{User: user, Error: lib.WithStep("guardar sesión", err)}
	}
	return RegisterResult{Success: true, User: user}
}

func (in RegisterInput) form() validate.Form {
	return validate.Form{
		validate.FieldUsername:        in.Username,
		validate.FieldPassword:        in.Password,
		validate.FieldConfirmPassword: in.ConfirmPassword,
		validate.FieldEmail:           in.Email,
		validate.FieldFirstName:       in.FirstName,
		validate.FieldLastName:        in.LastName,
		validate.FieldBirthday:        in.Birthday,
	}
}

func firstFieldError(order []string, errs map[string]string) string {
	for _, name := range order {
		if msg, ok := errs[name]; ok {
			return msg
		}
	}
	return ""
}

// ExecuteLogout 执行登出操作
// 删除本地会话并通知所有订阅者
func ExecuteLogout(store *session.Store) error {
	if err := store.Logout(); err != nil {
		return lib.WithStep("cerrar sesión", err)
	}
	return nil
}

// ExecuteWhoami 执行whoami操作
// 会话存在时向数据平台刷新一次用户信息，平台不可达时返回本地副本
func ExecuteWhoami(ctx context.Context, p lib.Platform, store *session.Store) WhoamiResult {
	user, ok := store.Current()
	if !ok {
		return WhoamiResult{Error: lib.WithStep("whoami", lib.ErrNotLoggedIn)}
	}
	if p == nil {
		return WhoamiResult{User: user}
	}
	fresh, err := p.GetUser(ctx, user.Id)
	switch {
	case errors.Is(err, lib.ErrNotFound):
		return WhoamiResult{Error: lib.WithStep("whoami", lib.NewAuthError(meta.MsgUserNotFound, err))}
	case err != nil:
		logs.Warnf("refresh user %d: %v\n", user.Id, err)
		return WhoamiResult{User: user}
	}
	return WhoamiResult{User: fresh}
}
