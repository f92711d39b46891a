package service

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"
	"Thread_Hive/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repo     *mysql.UserRepository
	rUser    *redis.UserRepository
	emailSvc *EmailService
}

func NewUserService(db *gorm.DB, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: db},
		rUser:    &redis.UserRepository{},
		emailSvc: emailSvc,
	}
}

// Register 注册：校验邮箱验证码，写入用户并分配对外 uid
func (s *UserService) Register(ctx context.Context, username, password, email, code string) (*model.User, error) {
	if username == "" || password == "" || email == "" {
		return nil, pkg.Invalidf("username, password and email required")
	}

	ok, err := s.emailSvc.VerifyCode("register", email, code)
	if err != nil || !ok {
		return nil, pkg.Invalidf("verification failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Uid:      pkg.NewUid(),
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, login, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errors.New("invalid password")
	}

	token, err := pkg.GeneratePair(user.ID, user.Uid)
	if err != nil {
		return nil, err
	}
	if err := s.rUser.AddUserToken(user.ID, token.AccessToken); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *UserService) Logout(userID uint64) error {
	return s.rUser.DeleteUserToken(userID)
}

// Onboard 首次完善资料（upsert 语义：资料字段整体覆盖并点亮 onboarded）
func (s *UserService) Onboard(ctx context.Context, uid, name, username, bio, avatarURL string) (*model.User, error) {
	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	if username != "" {
		updates["username"] = username
	}
	if bio != "" {
		updates["bio"] = bio
	}
	if avatarURL != "" {
		updates["avatar_url"] = avatarURL
	}
	return s.repo.Onboard(ctx, uid, updates)
}

func (s *UserService) Get(ctx context.Context, uid string) (*model.User, error) {
	return s.repo.FindByUid(ctx, uid)
}

// Delete 注销账号并级联清理其全部痕迹，随后失效登录态
func (s *UserService) Delete(ctx context.Context, uid string) error {
	user, err := s.repo.FindByUid(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, uid); err != nil {
		return err
	}
	_ = s.rUser.DeleteUserToken(user.ID)
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.Invalidf("invalid password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	// 改密后强制重新登录
	return s.rUser.DeleteUserToken(user.ID)
}

// ResetPassword 忘记密码：邮箱验证码兑换新密码
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	ok, err := s.emailSvc.VerifyCode("reset", email, code)
	if err != nil || !ok {
		return pkg.Invalidf("verification failed")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return s.rUser.DeleteUserToken(user.ID)
}
