package domain

import (
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	"github.com/bovipred/bovipred-backend/internal/domain/auth"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/domain/ml"
	"github.com/bovipred/bovipred-backend/internal/domain/reporting"
)

type User = auth.User
type UserToken = auth.UserToken

type Animal = livestock.Animal
type Group = livestock.Group
type Sire = livestock.Sire
type IATFRecord = livestock.IATFRecord

type Prediction = ml.Prediction
type Report = reporting.Report
type ActivityLog = audit.ActivityLog
