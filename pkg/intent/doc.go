/*
Package intent builds and owns the address tree of the router.

Nodes are keyed by dot-segmented addresses that mirror their position in the tree
("order", "order.item"). While building, every classifier sample of a node is handed to
the injected ports.TextClassifier with the node address as label, and literal texts are
indexed in an exact-match table. Once Freeze is called the registry is read-only and may
be shared by any number of concurrent dispatches.
*/
package intent
