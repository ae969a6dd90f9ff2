/*
Package ports defines the driven ports (interfaces) around the recipient workflow.

These contracts decouple the core from the excluded transport layer, allowing the
same workflow to run against an in-process stub, a Redis or SQL store, or a remote
HTTP API.

# Key Interfaces

  - Record: the snake_case wire shape of a recipient.
  - FetchFunc / UpdateFunc: the transport calls the Gateway adapts.
  - RecipientStore: persistence of records (Memory, Redis, Loam, SQL).
  - DistributedLocker: serializes writes to one record across replicas.
*/
package ports
