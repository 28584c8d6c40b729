package service

import "github.com/rs/zerolog"

// normalizeError lets domain errors through untouched and replaces anything
// else with ErrInternal after logging it, so store failures and bugs never
// leak to the caller.
func normalizeError(log zerolog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsDomain(err); ok {
		return err
	}
	log.Error().Err(err).Str("op", op).Msg("unexpected error")
	return ErrInternal()
}
