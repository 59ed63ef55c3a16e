package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"account-service/internal/domain/entities"
	"account-service/internal/domain/repositories"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Migrate creates or updates the users table.
func (r *UserRepository) Migrate() error {
	return r.db.AutoMigrate(&UserModel{})
}

func (r *UserRepository) Create(ctx context.Context, user *entities.ValidatedUser) (*entities.User, error) {
	userEntity := user.GetUser()

	userModel := toModel(userEntity)
	userModel.Id = uuid.NewString()

	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		return nil, translateError(err)
	}

	return r.FindById(ctx, userModel.Id)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*entities.User, error) {
	var userModels []UserModel
	if err := r.db.WithContext(ctx).Order("created_at").Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, r.mapToEntity(&userModels[i]))
	}
	return users, nil
}

func (r *UserRepository) FindById(ctx context.Context, id string) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, "email = ?", email)
}

// Update saves every column, writing NULL for cleared OTP fields.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	userModel := toModel(user)

	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", user.Id).Select("*").Omit("created_at").Updates(&userModel)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.FindById(ctx, user.Id)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, email *string) (*entities.User, error) {
	changes := map[string]interface{}{"updated_at": time.Now()}
	if name != nil {
		changes["name"] = *name
	}
	if email != nil {
		changes["email"] = *email
	}

	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.FindById(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*entities.User, error) {
	var deleted *entities.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userModel UserModel
		if err := tx.Where("id = ?", id).First(&userModel).Error; err != nil {
			return err
		}
		if err := tx.Delete(&UserModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = r.mapToEntity(&userModel)
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return deleted, err
}

func (r *UserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*entities.User, error) {
	var userModel UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&userModel), nil
}

func toModel(user *entities.User) UserModel {
	return UserModel{
		Id:         user.Id,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
		Name:       user.Name,
		Email:      user.Email,
		Password:   user.Password,
		OTP:        user.OTP,
		OTPExpires: user.OTPExpires,
	}
}

func (r *UserRepository) mapToEntity(userModel *UserModel) *entities.User {
	return &entities.User{
		Id:         userModel.Id,
		CreatedAt:  userModel.CreatedAt,
		UpdatedAt:  userModel.UpdatedAt,
		Name:       userModel.Name,
		Email:      userModel.Email,
		Password:   userModel.Password,
		OTP:        userModel.OTP,
		OTPExpires: userModel.OTPExpires,
	}
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrDuplicateEmail
	}
	return err
}

var _ repositories.UserRepository = (*UserRepository)(nil)
