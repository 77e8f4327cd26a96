package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mateovidal/tradewind-backend/api/responses"
	"github.com/mateovidal/tradewind-backend/api/validators"
	messagesvc "github.com/mateovidal/tradewind-backend/internal/messages"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
	"github.com/mateovidal/tradewind-backend/pkg/logger"
)

func messageActor(r *http.Request) (messagesvc.Actor, error) {
	identity, err := callerIdentity(r.Context())
	if err != nil {
		return messagesvc.Actor{}, err
	}
	return messagesvc.Actor{UserID: identity.UserID, FullName: identity.FullName}, nil
}

// MessageSend delivers a direct message to another user.
func MessageSend(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		actor, err := messageActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body messagesvc.SendMessageInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Send(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// MessageThreads summarizes the caller's conversations.
func MessageThreads(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		actor, err := messageActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		threads, err := svc.Threads(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, threads)
	}
}

// MessageConversation returns the full exchange with one counterpart and
// marks incoming messages read.
func MessageConversation(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		actor, err := messageActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		otherUserID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversation, err := svc.Conversation(r.Context(), actor, otherUserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, conversation)
	}
}
