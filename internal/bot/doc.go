/*
Package bot serves the math tools as Discord slash commands.

Commands are declared in commands.yaml, embedded at build time, with
Traditional Chinese localisations. On gateway ready the catalog replaces the
application's commands, on one guild when DISCORD_GUILD_ID is set.

Each interaction is deferred at once, checked against a per-user rate limit,
run through the tool registry under the command timeout, and answered by
editing the deferred reply with the result text and any PNG attachments.
All REST calls pass through one circuit breaker; 4xx answers do not trip it.
*/
package bot
