/*

Package board implements the proposal workflow of a multisig board.

A fixed list of member addresses governs a set of proposals. Every proposal
carries an immutable snapshot of the board settings taken at creation time,
so later settings or membership changes never affect running proposals.
Membership is evaluated as of the block before the proposal was created.

Proposals travel one of two paths. A standard proposal collects approvals,
then a member starts a one-shot cooling-off delay, after the delay a second
round of confirmations opens, and once both thresholds are met the proposal
can be executed. An emergency proposal skips the delay and the confirmation
round entirely but must clear a strictly higher approval threshold.

Execution delegates the stored actions to an Executor, usually the
application router, with the proposal condition injected into the context.
Each action runs under its own savepoint. A failing action marked in the
allow failure map is skipped, any other failure drops all action writes
while the proposal stays closed.

An Initializer loads the board settings and the initial member list from
the genesis file.

*/
package board
