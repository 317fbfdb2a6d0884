/*
Package session serializes work per sender.

Dispatches for different senders run fully in parallel, while dispatches for the same
sender are executed one at a time, because reading and updating a sender's context is
not atomic. Locks are reference counted and released as soon as nobody waits on them,
so the lock table does not grow with the number of distinct senders.
*/
package session
