/*
Package ports defines the driven ports (interfaces) of the switchboard router.

These interfaces decouple the dispatch algorithm from the classifier implementation,
the storage of conversation state and the origin of intent definitions.

# Key Interfaces

  - TextClassifier: Trainable text classifier producing ranked labels.
  - ContextStore: Per-sender conversation state.
  - Conversation: Context accessors handed to actions, bound to one sender.
  - IntentSource: Anything able to produce intent definitions (files, DSL builders).
*/
package ports
