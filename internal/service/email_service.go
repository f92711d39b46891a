package service

import (
	"errors"

	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

var scopeSubjects = map[string]string{
	"register": "注册验证",
	"reset":    "重置密码",
}

// SendCode 发送验证码：先写 pending，邮件发出去之后再转 confirmed，
// 发信失败就回收 pending 键
func (s *EmailService) SendCode(scope, email string) error {
	subject, ok := scopeSubjects[scope]
	if !ok {
		return errors.New("unknown scope")
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err := s.rds.SetCodePending(scope, email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	if err := pkg.SendEmail(s.emailCfg, email, subject+"验证码", html); err != nil {
		_ = s.rds.DeleteCodePending(scope, email)
		return err
	}

	if err := s.rds.ConfirmCode(scope, email); err != nil {
		_ = s.rds.DeleteCodePending(scope, email)
		return err
	}
	return nil
}

// VerifyCode 校验验证码并一次性删除
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetConfirmedCode(scope, email)
	if err != nil {
		// 不存在或已过期
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err := s.rds.DeleteConfirmedCode(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
