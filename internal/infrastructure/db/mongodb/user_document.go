package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"account-service/internal/domain/entities"
)

type userDocument struct {
	Id         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Password   string             `bson:"password"`
	OTP        *int               `bson:"otp,omitempty"`
	OTPExpires *time.Time         `bson:"otpExpires,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func newUserDocument(user *entities.User) (*userDocument, error) {
	doc := &userDocument{
		Name:       user.Name,
		Email:      user.Email,
		Password:   user.Password,
		OTP:        user.OTP,
		OTPExpires: user.OTPExpires,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
	if user.Id != "" {
		id, err := primitive.ObjectIDFromHex(user.Id)
		if err != nil {
			return nil, err
		}
		doc.Id = id
	}
	return doc, nil
}

func (d *userDocument) toEntity() *entities.User {
	user := &entities.User{
		Id:         d.Id.Hex(),
		Name:       d.Name,
		Email:      d.Email,
		Password:   d.Password,
		OTP:        d.OTP,
		OTPExpires: d.OTPExpires,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	return user
}
