/*
Package session keeps the recipient screens opened by remote clients.

Each session owns one screen bound to one recipient. Operations on a session are
serialized with a per-session lock that is garbage collected by reference counting,
and can additionally be guarded by a distributed lock when several replicas share
the same record store.
*/
package session
