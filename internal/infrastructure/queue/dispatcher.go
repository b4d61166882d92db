package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/application/project"
	"github.com/taskstream/taskstream/internal/domain"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// The project bootstrapped for every new user.
const (
	defaultProjectName        = "Todo List"
	defaultProjectDescription = "Your default todo list"
)

// DefaultProjectCreator is the command invoked for CREATE_DEFAULT_PROJECT.
type DefaultProjectCreator interface {
	Execute(ctx context.Context, input project.CreateProjectInput) (*project.CreateProjectResult, error)
}

// Dispatcher consumes the project and task queues and routes envelopes by
// action: registration follow-ups into the command layer, everything else
// into the fan-out broadcaster. Malformed or unknown envelopes are logged
// and discarded; the dispatcher never crashes the consuming process and
// never deduplicates redeliveries.
type Dispatcher struct {
	srv      *asynq.Server
	mux      *asynq.ServeMux
	projects DefaultProjectCreator
	caster   ports.Broadcaster
	log      zerolog.Logger
}

// NewDispatcher creates an asynq server subscribed to both event queues.
// Call Run to start consuming.
func NewDispatcher(redisOpt asynq.RedisClientOpt, projects DefaultProjectCreator, caster ports.Broadcaster, log zerolog.Logger) *Dispatcher {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			events.QueueProject: 1,
			events.QueueTask:    1,
		},
		LogLevel: asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	d := &Dispatcher{srv: srv, mux: mux, projects: projects, caster: caster, log: log}
	mux.HandleFunc(TypeProjectEvent, d.handleEvent)
	mux.HandleFunc(TypeTaskEvent, d.handleEvent)
	return d
}

func (d *Dispatcher) handleEvent(ctx context.Context, t *asynq.Task) error {
	var env events.Envelope
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		d.log.Error().Err(err).Str("type", t.Type()).Msg("malformed envelope, discarding")
		return nil
	}
	action, err := events.ParseAction(string(env.Action))
	if err != nil {
		d.log.Warn().Str("action", string(env.Action)).Msg("unknown action, discarding")
		return nil
	}
	d.dispatch(ctx, action, env)
	return nil
}

// dispatch is the closed-enum switch: every action has a case and a new
// action fails ParseAction until it is added here.
func (d *Dispatcher) dispatch(ctx context.Context, action events.Action, env events.Envelope) {
	switch action {
	case events.ActionCreateDefaultProject:
		d.createDefaultProject(ctx, env)
	case events.ActionProjectAssigned:
		var p events.ProjectAssignedPayload
		if err := env.DecodePayload(&p); err != nil {
			d.log.Error().Err(err).Msg("bad PROJECT_ASSIGNED payload, discarding")
			return
		}
		projectID, err := domain.ParseProjectID(p.ProjectID)
		if err != nil {
			d.log.Error().Err(err).Str("project_id", p.ProjectID).Msg("bad project id, discarding")
			return
		}
		userID, err := domain.ParseUserID(p.UserID)
		if err != nil {
			d.log.Error().Err(err).Str("user_id", p.UserID).Msg("bad user id, discarding")
			return
		}
		d.caster.SendProjectAssigned(projectID, userID)
	case events.ActionTaskAdded, events.ActionTaskUpdated, events.ActionTaskDeleted:
		var p events.TaskEventPayload
		if err := env.DecodePayload(&p); err != nil {
			d.log.Error().Err(err).Str("action", string(action)).Msg("bad task payload, discarding")
			return
		}
		projectID, err := domain.ParseProjectID(p.ProjectID)
		if err != nil {
			d.log.Error().Err(err).Str("project_id", p.ProjectID).Msg("bad project id, discarding")
			return
		}
		switch action {
		case events.ActionTaskAdded:
			d.caster.SendTaskAdded(projectID, p.TaskID, p.Update)
		case events.ActionTaskUpdated:
			d.caster.SendTaskUpdate(projectID, p.TaskID, p.Update)
		case events.ActionTaskDeleted:
			d.caster.SendTaskDelete(projectID, p.TaskID, p.Update)
		}
	}
}

// createDefaultProject runs the registration follow-up. The registration has
// already committed, so failures here are logged and swallowed; asynq must
// not retry either, hence no error escapes.
func (d *Dispatcher) createDefaultProject(ctx context.Context, env events.Envelope) {
	var p events.CreateDefaultProjectPayload
	if err := env.DecodePayload(&p); err != nil {
		d.log.Error().Err(err).Msg("bad CREATE_DEFAULT_PROJECT payload, discarding")
		return
	}
	userID, err := domain.ParseUserID(p.UserID)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", p.UserID).Msg("bad user id, discarding")
		return
	}
	_, err = d.projects.Execute(ctx, project.CreateProjectInput{
		CreatedBy:   userID,
		Name:        defaultProjectName,
		Description: defaultProjectDescription,
	})
	if err != nil {
		d.log.Warn().Err(err).Str("user_id", p.UserID).Msg("default project creation failed")
	}
}

// Run blocks until shutdown.
func (d *Dispatcher) Run() error {
	return d.srv.Run(d.mux)
}

// Shutdown stops the dispatcher.
func (d *Dispatcher) Shutdown() {
	d.srv.Shutdown()
}
