// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	externalmock "github.com/KirkDiggler/sheetform/internal/clients/external/mock"
	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	formsession "github.com/KirkDiggler/sheetform/internal/repositories/form_session"
	formsessionmock "github.com/KirkDiggler/sheetform/internal/repositories/form_session/mock"
)

// ExpectSessionGet sets up a mock expectation for loading a session by ID
func ExpectSessionGet(mockRepo *formsessionmock.MockRepository, session *dnd5e.FormSession) *gomock.Call {
	return mockRepo.EXPECT().
		Get(gomock.Any(), formsession.GetInput{ID: session.ID}).
		Return(&formsession.GetOutput{Session: session}, nil)
}

// ExpectSessionUpdate accepts one update and echoes the stored session back
func ExpectSessionUpdate(mockRepo *formsessionmock.MockRepository) *gomock.Call {
	return mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input formsession.UpdateInput) (*formsession.UpdateOutput, error) {
			return &formsession.UpdateOutput{Session: input.Session}, nil
		})
}

// ExpectHints sets up race and class hint lookups for the prompt notes
func ExpectHints(mockClient *externalmock.MockClient, race, class string) {
	mockClient.EXPECT().
		RaceHint(gomock.Any(), race).
		Return(race+": Medium, speed 30 ft.", nil)
	mockClient.EXPECT().
		ClassHint(gomock.Any(), class).
		Return(class+": hit die d6", nil)
}
