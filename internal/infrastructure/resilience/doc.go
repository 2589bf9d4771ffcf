/*
Package resilience provides a circuit breaker for calls to the chat
platform's REST API.

# Usage

	breaker := resilience.New("discord", resilience.Settings{
		Timeout: 30 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state", zap.String("breaker", name), zap.Stringer("to", to))
		},
	})

	msg, err := resilience.Do(ctx, breaker, func(ctx context.Context) (*discordgo.Message, error) {
		return session.InteractionResponseEdit(interaction, edit, discordgo.WithContext(ctx))
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                      [failure]
	                                           v
	                                         Open
*/
package resilience
