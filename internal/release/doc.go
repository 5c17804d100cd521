// Package release calculates the release jobs that the release workflow
// starts.
//
// A run consists of the following stages:
//
//   - The Collector enumerates candidate commits. For scheduled runs these are
//     the heads of all protected release branches, for manual runs the commit
//     of the ref passed as workflow input.
//   - The metadata of every candidate is resolved, it determines the release
//     channel of the candidate.
//   - For scheduled runs only channels that are released automatically are
//     kept. Of all candidates of the rolling channel only the one with the
//     highest rust version is kept.
//   - Channels that more than one candidate would be released to are
//     discarded completely. Which of the candidates would be released first
//     is not deterministic, a human has to resolve the conflict.
//   - For every remaining release a JobDescriptor is emitted.
package release
