/*
Package domain contains the core domain models of the switchboard intent router.

It defines the intent tree (nodes addressed by dot-segmented paths), the per-sender
conversation context, classifier output and the result of a dispatch. The package is
kept free of I/O and third-party dependencies.

# Key Entities

  - IntentNode: A node of the address tree (samples, literal text, action, alias).
  - Definition: The declarative, nested input used to build the tree.
  - Conversation: The runtime snapshot of one sender (current and previous address, stash).
  - Classifications: Ranked (label, confidence) pairs produced by a classifier.
  - Result: What a single dispatch resolved and executed.
*/
package domain
