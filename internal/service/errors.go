package service

import "errors"

var (
	ErrPasswordIncorrect   = errors.New("password incorrect")
	ErrTokenIncorrect      = errors.New("token incorrect")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRegistration = errors.New("email and password are required")

	ErrUserNotFound         = errors.New("User not found")
	ErrAccountDeactivated   = errors.New("Your account has been deactivated")
	ErrInvalidAccountStatus = errors.New("Invalid activation type")
	ErrPasswordTooShort     = errors.New("password must be 8 characters and above")
	ErrSamePassword         = errors.New("New password is the same as the old password")

	ErrSurveyNotFound           = errors.New("Survey does not exist")
	ErrQuestionNotFound         = errors.New("Question not found")
	ErrSurveyNotTakingResponses = errors.New("This survey is no longer taking responses")
	ErrSurveyIDRequired         = errors.New("survey id is required")
	ErrSurveyTitleMissing       = errors.New("survey has no title")
	ErrInvalidQuestionType      = errors.New("invalid question type")
	ErrExportFailed             = errors.New("Error generating Excel file")

	ErrAlreadyScheduled    = errors.New("Survey already scheduled")
	ErrInvalidScheduleDate = errors.New("schedule date must be formatted yyyy-MM-dd HH:mm")
	ErrInvalidTab          = errors.New("unknown tab")
	ErrInvalidStatus       = errors.New("status must be ACTIVATE or DEACTIVATE")
)
